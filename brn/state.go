package brn

import "github.com/burst-network/burstnode/types"

// RateSegment is one contiguous interval of accrual at a fixed rate. When
// governance votes a rate change, the active segment is closed at the
// change point and a new one opened — prior accrual is never recomputed.
type RateSegment struct {
	Rate  Amount // raw units accrued per second during this segment
	Start types.Timestamp
	End   *types.Timestamp // nil iff this is the active (last) segment
}

// WalletState is the BRN accrual state for a single verified wallet.
// Invariants: segments are contiguous, non-overlapping, sorted by Start;
// exactly the last segment has End == nil; the first segment's Start ==
// VerifiedAt.
type WalletState struct {
	VerifiedAt   types.Timestamp
	TotalBurned  Amount // cumulative, monotonically non-decreasing
	TotalStaked  Amount
	RateSegments []RateSegment
}

// NewWalletState creates BRN state for a freshly verified wallet with a
// single open rate segment.
func NewWalletState(verifiedAt types.Timestamp, initialRate Amount) *WalletState {
	return &WalletState{
		VerifiedAt:  verifiedAt,
		TotalBurned: Zero(),
		TotalStaked: Zero(),
		RateSegments: []RateSegment{
			{Rate: initialRate, Start: verifiedAt, End: nil},
		},
	}
}

// TotalAccrued sums rate_i * (min(end_i, now) - start_i) over every segment
// whose start precedes now. This is the explicit formula from §3 of the
// specification: `Σ rate_i × (min(end_i, t) − start_i)`.
func (s *WalletState) TotalAccrued(now types.Timestamp) Amount {
	total := Zero()
	for _, seg := range s.RateSegments {
		end := now
		if seg.End != nil && *seg.End < now {
			end = *seg.End
		}
		if end < seg.Start {
			continue
		}
		duration := uint64(end - seg.Start)
		contribution, ok := seg.Rate.MulDuration(duration)
		if !ok {
			// Checked overflow: clamp the segment's contribution at the
			// representable ceiling rather than panicking on arbitrary
			// governed rates, per the "engine must never panic" rule.
			contribution = Amount{v: maxAmount}
		}
		sum, ok := total.Add(contribution)
		if !ok {
			return Amount{v: maxAmount}
		}
		total = sum
	}
	return total
}

// AvailableBalance is accrued minus burned minus staked, saturating at zero.
func (s *WalletState) AvailableBalance(now types.Timestamp) Amount {
	return s.TotalAccrued(now).Sub(s.TotalBurned).Sub(s.TotalStaked)
}
