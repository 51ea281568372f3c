// Package work implements proof-of-work validation and generation, plus
// adaptive difficulty adjustment keyed to recent block throughput.
// Grounded on original_source/work/src/difficulty.rs and validator.rs.
package work

// DifficultyAdjuster tracks recent block timestamps in a sliding window
// and scales difficulty linearly when observed throughput exceeds the
// target, so spam gets more expensive under load while legitimate use at
// low volume stays cheap.
type DifficultyAdjuster struct {
	window         []uint64
	windowSize     int
	baseDifficulty uint64
	targetTPS      uint64
	maxMultiplier  uint64
}

// NewDifficultyAdjuster returns an adjuster with the given base difficulty,
// target transactions-per-second, and sliding-window size.
func NewDifficultyAdjuster(baseDifficulty, targetTPS uint64, windowSize int) *DifficultyAdjuster {
	return &DifficultyAdjuster{
		window:         make([]uint64, 0, windowSize),
		windowSize:     windowSize,
		baseDifficulty: baseDifficulty,
		targetTPS:      targetTPS,
		maxMultiplier:  16,
	}
}

// RecordBlock records a block timestamp for throughput tracking.
func (d *DifficultyAdjuster) RecordBlock(timestampSecs uint64) {
	d.window = append(d.window, timestampSecs)
	for len(d.window) > d.windowSize {
		d.window = d.window[1:]
	}
}

// CurrentDifficulty computes the current effective difficulty based on
// recent throughput.
func (d *DifficultyAdjuster) CurrentDifficulty() uint64 {
	if len(d.window) < 2 {
		return d.baseDifficulty
	}

	first := d.window[0]
	last := d.window[len(d.window)-1]
	elapsed := uint64(1)
	if last > first {
		elapsed = last - first
	}
	count := uint64(len(d.window))
	tps := count / elapsed

	if tps <= d.targetTPS {
		return d.baseDifficulty
	}

	target := d.targetTPS
	if target == 0 {
		target = 1
	}
	multiplier := tps / target
	if multiplier > d.maxMultiplier {
		multiplier = d.maxMultiplier
	}

	product := d.baseDifficulty * multiplier
	if multiplier != 0 && product/multiplier != d.baseDifficulty {
		return ^uint64(0) // saturate on overflow
	}
	return product
}

// SetBaseDifficulty updates the base difficulty, e.g. in response to a
// governance parameter change.
func (d *DifficultyAdjuster) SetBaseDifficulty(newBase uint64) {
	d.baseDifficulty = newBase
}
