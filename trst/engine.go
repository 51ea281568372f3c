package trst

import (
	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
	log "github.com/sirupsen/logrus"
)

// Engine tracks each token's current state and rewrites the merger graph on
// every mint/split/merge/revoke operation. It is a thin orchestrator over
// TokenStore/MergerGraphStore/ExpiryIndexStore — all durable state lives in
// the storage layer, per §9's "no long-lived mutable reference" rule.
type Engine struct {
	tokens   TokenStore
	graph    MergerGraphStore
	expiry   ExpiryIndexStore
	lifetime uint64 // governed TRST lifetime in seconds
	log      *log.Logger
}

// NewEngine constructs an Engine bound to the given storage surfaces.
func NewEngine(tokens TokenStore, graph MergerGraphStore, expiry ExpiryIndexStore, lifetimeSecs uint64, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Engine{tokens: tokens, graph: graph, expiry: expiry, lifetime: lifetimeSecs, log: logger}
}

// Mint creates the origin TRST node from a Burn block: the origin is
// registered as its own descendant (origin -> {origin}) and scheduled for
// expiry at originTs + lifetime.
func (e *Engine) Mint(origin types.Hash, holder types.Address, amount brn.Amount, originTs types.Timestamp) (*Token, error) {
	tok := &Token{
		TxHash:              origin,
		Holder:              holder,
		Amount:              amount,
		Origin:              origin,
		OriginTimestamp:     originTs,
		EffectiveOriginTime: originTs,
		State:               types.TrstActive,
		Proportions:         []OriginProportion{{Origin: origin, Weight: amount}},
	}
	if err := e.tokens.PutToken(tok); err != nil {
		return nil, err
	}
	if err := e.graph.AddDescendant(origin, origin); err != nil {
		return nil, err
	}
	if err := e.expiry.PutExpiry(tok.Expiry(e.lifetime), origin); err != nil {
		return nil, err
	}
	e.log.WithFields(log.Fields{"origin": origin, "amount": amount.String()}).Info("trst origin minted")
	return tok, nil
}

// SplitOutput describes one output of a Split operation.
type SplitOutput struct {
	TxHash types.Hash
	Holder types.Address
	Amount brn.Amount
}

// Split divides parent into outputs. Outputs must sum exactly to parent's
// amount, else KindSplitMismatch. Each output inherits parent's origin,
// effective-origin time, and proportions, and is registered as a descendant
// of every origin parent descends from.
func (e *Engine) Split(parent *Token, outputs []SplitOutput) ([]*Token, error) {
	if !parent.State.IsTransferable() {
		return nil, ledgererr.New(ledgererr.KindNotTransferable, "token %s not transferable (state %s)", parent.TxHash, parent.State)
	}
	total := brn.Zero()
	for _, o := range outputs {
		sum, ok := total.Add(o.Amount)
		if !ok {
			return nil, ledgererr.New(ledgererr.KindSplitMismatch, "split total overflow")
		}
		total = sum
	}
	if total.Cmp(parent.Amount) != 0 {
		return nil, ledgererr.New(ledgererr.KindSplitMismatch, "split amounts (%s) do not equal parent amount (%s)", total, parent.Amount).
			WithField("total", total.String()).WithField("parent", parent.Amount.String())
	}

	results := make([]*Token, 0, len(outputs))
	for _, o := range outputs {
		child := &Token{
			TxHash:              o.TxHash,
			Holder:              o.Holder,
			Amount:              o.Amount,
			Origin:              parent.Origin,
			OriginTimestamp:     parent.OriginTimestamp,
			EffectiveOriginTime: parent.EffectiveOriginTime,
			Link:                parent.TxHash,
			Proportions:         parent.Proportions,
			State:               types.TrstActive,
		}
		if err := e.tokens.PutToken(child); err != nil {
			return nil, err
		}
		if err := e.registerUnderOrigins(child); err != nil {
			return nil, err
		}
		results = append(results, child)
	}
	e.log.WithFields(log.Fields{"parent": parent.TxHash, "outputs": len(outputs)}).Info("trst split")
	return results, nil
}

// Merge combines inputs (all held by the same account, enforced by the
// caller/block processor) into one token. The merge's origin set is the
// union of every input's origins, weighted by each input's proportions; its
// effective-origin time is the earliest of the inputs', so its expiry is the
// earliest too (§8 scenario 3).
func (e *Engine) Merge(inputs []*Token, newTxHash types.Hash, holder types.Address) (*Token, error) {
	if len(inputs) == 0 {
		return nil, ledgererr.New(ledgererr.KindEmptyMerge, "cannot merge zero tokens")
	}
	for _, in := range inputs {
		if !in.State.IsTransferable() {
			return nil, ledgererr.New(ledgererr.KindNotTransferable, "token %s not transferable (state %s)", in.TxHash, in.State)
		}
	}

	total := brn.Zero()
	effective := inputs[0].EffectiveOriginTime
	merged := map[types.Hash]brn.Amount{}
	for _, in := range inputs {
		if sum, ok := total.Add(in.Amount); ok {
			total = sum
		}
		if in.EffectiveOriginTime < effective {
			effective = in.EffectiveOriginTime
		}
		for _, p := range in.Proportions {
			if cur, ok := merged[p.Origin]; ok {
				if sum, ok := cur.Add(p.Weight); ok {
					merged[p.Origin] = sum
				}
			} else {
				merged[p.Origin] = p.Weight
			}
		}
	}
	proportions := make([]OriginProportion, 0, len(merged))
	for origin, weight := range merged {
		proportions = append(proportions, OriginProportion{Origin: origin, Weight: weight})
	}

	merge := &Token{
		TxHash:              newTxHash,
		Holder:              holder,
		Amount:              total,
		Origin:              inputs[0].Origin,
		OriginTimestamp:     inputs[0].OriginTimestamp,
		EffectiveOriginTime: effective,
		State:               types.TrstActive,
		Proportions:         proportions,
	}
	if err := e.tokens.PutToken(merge); err != nil {
		return nil, err
	}
	if err := e.registerUnderOrigins(merge); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if err := e.graph.AddDownstream(in.TxHash, merge.TxHash); err != nil {
			return nil, err
		}
	}
	e.log.WithFields(log.Fields{"merge": newTxHash, "inputs": len(inputs), "expiry_base": effective}).Info("trst merge")
	return merge, nil
}

func (e *Engine) registerUnderOrigins(tok *Token) error {
	for _, p := range tok.Proportions {
		if err := e.graph.AddDescendant(p.Origin, tok.TxHash); err != nil {
			return err
		}
	}
	return nil
}

// Revoke walks origin's descendants — including transitive downstream
// merges — and marks every reached token Revoked. Returns the reached
// tx hashes so the caller can bump holders' revoked-TRST counters and
// notify the pruner.
func (e *Engine) Revoke(origin types.Hash) ([]types.Hash, error) {
	reached, err := e.reachableFrom(origin)
	if err != nil {
		return nil, err
	}
	for _, tx := range reached {
		tok, err := e.tokens.GetToken(tx)
		if err != nil {
			return nil, err
		}
		tok.State = types.TrstRevoked
		if err := e.tokens.PutToken(tok); err != nil {
			return nil, err
		}
	}
	e.log.WithFields(log.Fields{"origin": origin, "count": len(reached)}).Warn("trst mass revocation")
	return reached, nil
}

// UnRevoke replays Revoke's traversal and restores each token to Active (or
// Expired, if its natural expiry has since passed). Revoke and UnRevoke over
// the same origin are inverses modulo intervening natural expiry (§8).
func (e *Engine) UnRevoke(origin types.Hash, now types.Timestamp) ([]types.Hash, error) {
	reached, err := e.reachableFrom(origin)
	if err != nil {
		return nil, err
	}
	for _, tx := range reached {
		tok, err := e.tokens.GetToken(tx)
		if err != nil {
			return nil, err
		}
		if tok.Expiry(e.lifetime) <= now {
			tok.State = types.TrstExpired
		} else {
			tok.State = types.TrstActive
		}
		if err := e.tokens.PutToken(tok); err != nil {
			return nil, err
		}
	}
	e.log.WithFields(log.Fields{"origin": origin, "count": len(reached)}).Info("trst un-revocation")
	return reached, nil
}

// reachableFrom performs the BFS described in §4.4/§9: start at origin's
// direct descendants, and for every descendant that is itself a merge node,
// transitively walk its downstream edges too.
func (e *Engine) reachableFrom(origin types.Hash) ([]types.Hash, error) {
	direct, err := e.graph.Descendants(origin)
	if err != nil {
		return nil, err
	}
	seen := make(map[types.Hash]struct{}, len(direct))
	queue := make([]types.Hash, 0, len(direct))
	for _, tx := range direct {
		if _, ok := seen[tx]; !ok {
			seen[tx] = struct{}{}
			queue = append(queue, tx)
		}
	}
	order := make([]types.Hash, 0, len(direct))
	for i := 0; i < len(queue); i++ {
		tx := queue[i]
		order = append(order, tx)
		downstream, err := e.graph.Downstream(tx)
		if err != nil {
			return nil, err
		}
		for _, d := range downstream {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				queue = append(queue, d)
			}
		}
	}
	return order, nil
}

// Expire range-scans the expiry index for tokens whose expiry has passed
// (minus grace) and transitions each Active -> Expired. Driven periodically
// by the pruner (§4.7), not on the hot block-processing path.
func (e *Engine) Expire(now types.Timestamp, graceSecs uint64) ([]types.Hash, error) {
	cutoff := now
	if graceSecs <= uint64(now) {
		cutoff = now - types.Timestamp(graceSecs)
	}
	candidates, err := e.expiry.RangeScanBefore(cutoff)
	if err != nil {
		return nil, err
	}
	expired := make([]types.Hash, 0, len(candidates))
	for _, tx := range candidates {
		tok, err := e.tokens.GetToken(tx)
		if err != nil {
			return nil, err
		}
		if tok.State != types.TrstActive {
			continue
		}
		tok.State = types.TrstExpired
		if err := e.tokens.PutToken(tok); err != nil {
			return nil, err
		}
		expired = append(expired, tx)
	}
	if len(expired) > 0 {
		e.log.WithField("count", len(expired)).Info("trst tokens expired")
	}
	return expired, nil
}
