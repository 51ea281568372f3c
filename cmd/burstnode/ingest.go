package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/blockproc"
	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/cryptocap"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/types"
)

// openIngestSource opens path as the ingest loop's block source, or returns
// stdin if path is empty. The returned close func is nil for stdin, which
// the caller must not close.
func openIngestSource(path string) (io.Reader, func() error, error) {
	if path == "" {
		return os.Stdin, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// wireBlock is the newline-delimited-JSON envelope this binary reads a
// block from. The real wire codec (the network layer that would decode
// blocks off the gossip protocol) is out of scope; this is the minimal
// stand-in that lets cmd/burstnode actually drive the processor without
// one, by reading pre-validated blocks from a file or stdin. Hash, signature
// and public-key fields are hex; addresses are plain "brst_" strings;
// amounts are decimal strings, since brn.Amount
// wraps a *big.Int with no fixed width.
type wireBlock struct {
	Kind           string `json:"kind"`
	Account        string `json:"account"`
	Previous       string `json:"previous"`
	Representative string `json:"representative"`
	Link           string `json:"link"`
	Transaction    string `json:"transaction"`
	Timestamp      uint64 `json:"timestamp"`
	Work           uint64 `json:"work"`
	Signature      string `json:"signature"`
	Hash           string `json:"hash"`
	PublicKey      string `json:"public_key"`

	Destination  string            `json:"destination,omitempty"`
	Amount       string            `json:"amount,omitempty"`
	Token        string            `json:"token,omitempty"`
	SplitOutputs []wireSplitOutput `json:"split_outputs,omitempty"`
	MergeInputs  []string          `json:"merge_inputs,omitempty"`
	StakeAmount  string            `json:"stake_amount,omitempty"`
	Target       string            `json:"target,omitempty"`
}

// wireSplitOutput is one output of a Split block's wireBlock envelope.
type wireSplitOutput struct {
	TxHash string `json:"tx_hash"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
}

var blockKindByName = map[string]types.BlockKind{
	"open": types.BlockOpen, "burn": types.BlockBurn, "send": types.BlockSend,
	"receive": types.BlockReceive, "split": types.BlockSplit, "merge": types.BlockMerge,
	"endorse": types.BlockEndorse, "challenge": types.BlockChallenge,
	"gov_proposal": types.BlockGovProposal, "gov_vote": types.BlockGovVote,
	"delegate": types.BlockDelegate, "revoke_delegation": types.BlockRevokeDelegation,
	"change_rep": types.BlockChangeRep, "epoch": types.BlockEpoch,
}

// runIngestLoop reads newline-delimited wireBlock JSON from r until EOF or
// ctx is cancelled, feeding each one through proc.Process and logging the
// outcome. A malformed or rejected line is logged and skipped; it never
// aborts the loop, so one bad line from an operator-fed file doesn't take
// the node down.
func runIngestLoop(ctx context.Context, proc *blockproc.Processor, r io.Reader, logger *log.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		block, payload, pub, err := decodeWireBlock(line)
		if err != nil {
			logger.WithField("err", err).Warn("ingest: skipping malformed line")
			continue
		}

		outcome := proc.Process(block, payload, pub)
		fields := log.Fields{"account": block.Account, "kind": block.Kind, "outcome": outcome.Kind}
		if outcome.Err != nil {
			fields["err"] = outcome.Err
			logger.WithFields(fields).Warn("ingest: block rejected")
			continue
		}
		logger.WithFields(fields).Info("ingest: block applied")
	}
	if err := scanner.Err(); err != nil {
		logger.WithField("err", err).Warn("ingest: reader error, loop stopped")
	}
}

func decodeWireBlock(line string) (*types.StateBlock, blockproc.Payload, cryptocap.PublicKey, error) {
	var w wireBlock
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return nil, blockproc.Payload{}, nil, ledgererr.Wrap(ledgererr.KindInvalidBlock, err, "decode wire block")
	}

	kind, ok := blockKindByName[w.Kind]
	if !ok {
		return nil, blockproc.Payload{}, nil, ledgererr.New(ledgererr.KindInvalidBlock, "unknown block kind %q", w.Kind)
	}

	previous, err := decodeHash(w.Previous)
	if err != nil {
		return nil, blockproc.Payload{}, nil, err
	}
	link, err := decodeHash(w.Link)
	if err != nil {
		return nil, blockproc.Payload{}, nil, err
	}
	transaction, err := decodeHash(w.Transaction)
	if err != nil {
		return nil, blockproc.Payload{}, nil, err
	}
	hash, err := decodeHash(w.Hash)
	if err != nil {
		return nil, blockproc.Payload{}, nil, err
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(w.Signature, "0x"))
	if err != nil {
		return nil, blockproc.Payload{}, nil, ledgererr.Wrap(ledgererr.KindInvalidBlock, err, "decode signature")
	}
	pubBytes, err := hex.DecodeString(strings.TrimPrefix(w.PublicKey, "0x"))
	if err != nil {
		return nil, blockproc.Payload{}, nil, ledgererr.Wrap(ledgererr.KindInvalidBlock, err, "decode public key")
	}

	block := &types.StateBlock{
		Kind:           kind,
		Account:        types.Address(w.Account),
		Previous:       previous,
		Representative: types.Address(w.Representative),
		BrnBalance:     big.NewInt(0),
		TrstBalance:    big.NewInt(0),
		Link:           link,
		Transaction:    transaction,
		Timestamp:      types.Timestamp(w.Timestamp),
		Work:           w.Work,
		Signature:      sig,
		Hash:           hash,
	}

	payload := blockproc.Payload{
		Destination: types.Address(w.Destination),
		Target:      types.Address(w.Target),
	}
	if w.Amount != "" {
		amt, err := decodeAmount(w.Amount)
		if err != nil {
			return nil, blockproc.Payload{}, nil, err
		}
		payload.Amount = amt
	}
	if w.StakeAmount != "" {
		amt, err := decodeAmount(w.StakeAmount)
		if err != nil {
			return nil, blockproc.Payload{}, nil, err
		}
		payload.StakeAmount = amt
	}
	if w.Token != "" {
		tok, err := decodeHash(w.Token)
		if err != nil {
			return nil, blockproc.Payload{}, nil, err
		}
		payload.Token = tok
	}
	for _, mi := range w.MergeInputs {
		h, err := decodeHash(mi)
		if err != nil {
			return nil, blockproc.Payload{}, nil, err
		}
		payload.MergeInputs = append(payload.MergeInputs, h)
	}
	for _, so := range w.SplitOutputs {
		txHash, err := decodeHash(so.TxHash)
		if err != nil {
			return nil, blockproc.Payload{}, nil, err
		}
		amt, err := decodeAmount(so.Amount)
		if err != nil {
			return nil, blockproc.Payload{}, nil, err
		}
		payload.SplitOutputs = append(payload.SplitOutputs, blockproc.SplitOutputPayload{
			TxHash: txHash,
			Holder: types.Address(so.Holder),
			Amount: amt,
		})
	}

	return block, payload, cryptocap.PublicKey(pubBytes), nil
}

func decodeHash(s string) (types.Hash, error) {
	var h types.Hash
	if s == "" {
		return h, nil
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return h, ledgererr.Wrap(ledgererr.KindInvalidBlock, err, "decode hash")
	}
	if len(b) != len(h) {
		return h, ledgererr.New(ledgererr.KindInvalidBlock, "hash has %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

func decodeAmount(s string) (brn.Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return brn.Amount{}, ledgererr.New(ledgererr.KindInvalidBlock, "invalid decimal amount %q", s)
	}
	return brn.AmountFromBigInt(v), nil
}
