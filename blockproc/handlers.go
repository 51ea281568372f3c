package blockproc

import (
	"math/big"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/ledgererr"
	"github.com/burst-network/burstnode/ledgerstore"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
	"github.com/burst-network/burstnode/verification"
)

// handlers is the kind-keyed dispatch table §9 asks for: a table of
// functions, not a type switch or runtime method lookup.
var handlers = map[types.BlockKind]handlerFunc{
	types.BlockOpen:              handleOpen,
	types.BlockBurn:              handleBurn,
	types.BlockReceive:           handleReceive,
	types.BlockSend:              handleSend,
	types.BlockSplit:             handleSplit,
	types.BlockMerge:             handleMerge,
	types.BlockEndorse:           handleEndorse,
	types.BlockChallenge:         handleChallenge,
	types.BlockChangeRep:         handleChangeRep,
	types.BlockDelegate:          handleDelegate,
	types.BlockRevokeDelegation:  handleRevokeDelegation,
	types.BlockGovProposal:       handleGovProposal,
	types.BlockGovVote:           handleGovVote,
	types.BlockEpoch:             handleEpoch,
}

func handleOpen(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	cp := &types.AccountInfo{
		Address:            block.Account,
		State:              types.WalletUnverified,
		Head:               block.Hash,
		BlockCount:         1,
		ConfirmationHeight: 0,
		Representative:     block.Representative,
		TotalBurned:        big.NewInt(0),
		TotalStaked:        big.NewInt(0),
		TrstBalance:        big.NewInt(0),
		ExpiredTrst:        big.NewInt(0),
		RevokedTrst:        big.NewInt(0),
	}
	p.log.WithFields(map[string]any{"account": block.Account}).Info("account opened")
	return cp, nil
}

func handleBurn(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	if !info.State.AccruesBRN() {
		return nil, ledgererr.New(ledgererr.KindWalletNotVerified, "account %s is not verified for BRN accrual", block.Account)
	}
	state, err := p.store.GetBrnState(block.Account)
	if err != nil {
		return nil, err
	}
	if err := p.brn.RecordBurn(state, payload.Amount, block.Timestamp); err != nil {
		return nil, err
	}
	txn.PutBrnState(block.Account, state)

	if _, err := p.trst.Mint(block.Hash, payload.Destination, payload.Amount, block.Timestamp); err != nil {
		return nil, err
	}

	txn.PutPending(payload.Destination, block.Hash, &ledgerstore.PendingInfo{
		Source:    block.Account,
		Amount:    payload.Amount.BigInt().Bytes(),
		Timestamp: block.Timestamp,
		Provenance: []ledgerstore.PendingProvenance{{
			Amount:                   payload.Amount.BigInt().Bytes(),
			Origin:                   block.Hash,
			OriginWallet:             block.Account,
			OriginTimestamp:          block.Timestamp,
			EffectiveOriginTimestamp: block.Timestamp,
			OriginProportions:       []trst.OriginProportion{{Origin: block.Hash, Weight: payload.Amount}},
		}},
	})
	p.cache.IncPendingCount()

	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.TotalBurned = state.TotalBurned.BigInt()
	p.log.WithFields(map[string]any{"account": block.Account, "amount": payload.Amount.String()}).Info("brn burned, trst origin minted")
	return &cp, nil
}

func handleReceive(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	pending, err := p.store.GetPending(block.Account, block.Link)
	if err != nil {
		return nil, err
	}
	txn.DeletePending(block.Account, block.Link)
	p.cache.DecPendingCount()

	amount := new(big.Int).SetBytes(pending.Amount)
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.TrstBalance = new(big.Int).Add(cp.TrstBalance, amount)
	p.log.WithFields(map[string]any{"account": block.Account, "source": pending.Source, "amount": amount}).Info("trst received")
	return &cp, nil
}

func handleSend(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	if !info.State.CanTransact() {
		return nil, ledgererr.New(ledgererr.KindWalletNotVerified, "account %s may not transact TRST", block.Account)
	}
	tok, err := p.store.GetToken(payload.Token)
	if err != nil {
		return nil, err
	}
	if tok.Holder != block.Account {
		return nil, ledgererr.New(ledgererr.KindNotTransferable, "token %s is not held by %s", tok.TxHash, block.Account)
	}

	children, err := p.trst.Split(tok, []trst.SplitOutput{{TxHash: block.Hash, Holder: payload.Destination, Amount: tok.Amount}})
	if err != nil {
		return nil, err
	}
	child := children[0]

	provenance := make([]ledgerstore.PendingProvenance, 0, len(child.Proportions))
	for _, prop := range child.Proportions {
		provenance = append(provenance, ledgerstore.PendingProvenance{
			Amount:                   prop.Weight.BigInt().Bytes(),
			Origin:                   prop.Origin,
			OriginWallet:             block.Account,
			OriginTimestamp:          child.OriginTimestamp,
			EffectiveOriginTimestamp: child.EffectiveOriginTime,
			OriginProportions:       child.Proportions,
		})
	}
	txn.PutPending(payload.Destination, block.Hash, &ledgerstore.PendingInfo{
		Source:     block.Account,
		Amount:     child.Amount.BigInt().Bytes(),
		Timestamp:  block.Timestamp,
		Provenance: provenance,
	})
	p.cache.IncPendingCount()

	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	if cp.TrstBalance.Cmp(tok.Amount.BigInt()) < 0 {
		return nil, ledgererr.New(ledgererr.KindInsufficientBalance, "account %s trst balance below sent amount", block.Account)
	}
	cp.TrstBalance = new(big.Int).Sub(cp.TrstBalance, tok.Amount.BigInt())
	p.log.WithFields(map[string]any{"account": block.Account, "to": payload.Destination, "amount": tok.Amount.String()}).Info("trst sent")
	return &cp, nil
}

func handleSplit(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	parent, err := p.store.GetToken(block.Link)
	if err != nil {
		return nil, err
	}
	if parent.Holder != block.Account {
		return nil, ledgererr.New(ledgererr.KindNotTransferable, "token %s is not held by %s", parent.TxHash, block.Account)
	}

	outputs := make([]trst.SplitOutput, len(payload.SplitOutputs))
	for i, o := range payload.SplitOutputs {
		outputs[i] = trst.SplitOutput{TxHash: o.TxHash, Holder: o.Holder, Amount: o.Amount}
	}
	children, err := p.trst.Split(parent, outputs)
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		provenance := make([]ledgerstore.PendingProvenance, 0, len(child.Proportions))
		for _, prop := range child.Proportions {
			provenance = append(provenance, ledgerstore.PendingProvenance{
				Amount:                   prop.Weight.BigInt().Bytes(),
				Origin:                   prop.Origin,
				OriginWallet:             block.Account,
				OriginTimestamp:          child.OriginTimestamp,
				EffectiveOriginTimestamp: child.EffectiveOriginTime,
				OriginProportions:       child.Proportions,
			})
		}
		txn.PutPending(child.Holder, block.Hash, &ledgerstore.PendingInfo{
			Source:     block.Account,
			Amount:     child.Amount.BigInt().Bytes(),
			Timestamp:  block.Timestamp,
			Provenance: provenance,
		})
		p.cache.IncPendingCount()
	}

	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	if cp.TrstBalance.Cmp(parent.Amount.BigInt()) < 0 {
		return nil, ledgererr.New(ledgererr.KindInsufficientBalance, "account %s trst balance below split amount", block.Account)
	}
	cp.TrstBalance = new(big.Int).Sub(cp.TrstBalance, parent.Amount.BigInt())
	p.log.WithFields(map[string]any{"account": block.Account, "parent": parent.TxHash, "outputs": len(children)}).Info("trst split")
	return &cp, nil
}

func handleMerge(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	inputs := make([]*trst.Token, 0, len(payload.MergeInputs))
	for _, h := range payload.MergeInputs {
		tok, err := p.store.GetToken(h)
		if err != nil {
			return nil, err
		}
		if tok.Holder != block.Account {
			return nil, ledgererr.New(ledgererr.KindNotTransferable, "token %s is not held by %s", tok.TxHash, block.Account)
		}
		inputs = append(inputs, tok)
	}

	if _, err := p.trst.Merge(inputs, block.Hash, block.Account); err != nil {
		return nil, err
	}

	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	p.log.WithFields(map[string]any{"account": block.Account, "inputs": len(inputs)}).Info("trst merged")
	return &cp, nil
}

func handleEndorse(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	return stakeHandler(p, txn, info, block, payload, brn.StakeVerification)
}

func handleChallenge(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	return stakeHandler(p, txn, info, block, payload, brn.StakeChallenge)
}

func stakeHandler(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload, kind brn.StakeKind) (*types.AccountInfo, error) {
	if !info.State.AccruesBRN() {
		return nil, ledgererr.New(ledgererr.KindWalletNotVerified, "account %s is not verified to stake BRN", block.Account)
	}
	state, err := p.store.GetBrnState(block.Account)
	if err != nil {
		return nil, err
	}
	stake, err := p.brn.Stake(state, payload.StakeAmount, kind, payload.Target, block.Timestamp)
	if err != nil {
		return nil, err
	}
	txn.PutBrnState(block.Account, state)

	if kind == brn.StakeVerification {
		p.verificationCollab.NotifyEndorsement(verification.EndorsementRecorded{Endorser: block.Account, Target: payload.Target, At: block.Timestamp})
	} else {
		p.verificationCollab.NotifyChallenge(verification.ChallengeInitiated{Challenger: block.Account, Target: payload.Target, At: block.Timestamp})
	}
	p.verificationCollab.NotifyStakeEvent(verification.StakeEvent{Account: block.Account, StakeID: uint64(stake.ID), Resolved: false, Forfeit: false})

	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.TotalStaked = state.TotalStaked.BigInt()
	return &cp, nil
}

func handleChangeRep(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.Representative = block.Representative
	return &cp, nil
}

func handleDelegate(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.Representative = block.Representative
	return &cp, nil
}

func handleRevokeDelegation(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.Representative = ""
	return &cp, nil
}

func handleGovProposal(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	p.log.WithFields(map[string]any{"account": block.Account, "proposal": block.Link}).Info("governance proposal recorded")
	return &cp, nil
}

func handleGovVote(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	if !info.State.CanVote() {
		return nil, ledgererr.New(ledgererr.KindWalletNotVerified, "account %s may not vote", block.Account)
	}
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	p.log.WithFields(map[string]any{"account": block.Account, "proposal": block.Link}).Info("governance vote recorded")
	return &cp, nil
}

func handleEpoch(p *Processor, txn *ledgerstore.Txn, info *types.AccountInfo, block *types.StateBlock, payload Payload) (*types.AccountInfo, error) {
	cp := *info
	cp.BlockCount++
	cp.Head = block.Hash
	cp.Epoch++
	return &cp, nil
}
