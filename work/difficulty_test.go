package work

import "testing"

func TestBaseDifficultyWithNoBlocks(t *testing.T) {
	adj := NewDifficultyAdjuster(1000, 10, 100)
	if adj.CurrentDifficulty() != 1000 {
		t.Fatalf("CurrentDifficulty() = %d, want 1000", adj.CurrentDifficulty())
	}
}

func TestDifficultyUnchangedBelowTarget(t *testing.T) {
	adj := NewDifficultyAdjuster(1000, 10, 100)
	for i := uint64(0); i < 5; i++ {
		adj.RecordBlock(i * 10)
	}
	if adj.CurrentDifficulty() != 1000 {
		t.Fatalf("CurrentDifficulty() = %d, want 1000", adj.CurrentDifficulty())
	}
}

func TestDifficultyIncreasesAboveTarget(t *testing.T) {
	adj := NewDifficultyAdjuster(1000, 10, 1000)
	for i := uint64(0); i < 100; i++ {
		adj.RecordBlock(i / 100)
	}
	if adj.CurrentDifficulty() <= 1000 {
		t.Fatalf("expected difficulty above base, got %d", adj.CurrentDifficulty())
	}
}

func TestDifficultyCappedAtMaxMultiplier(t *testing.T) {
	adj := NewDifficultyAdjuster(1000, 1, 10000)
	for i := 0; i < 10000; i++ {
		adj.RecordBlock(0)
	}
	adj.RecordBlock(1)
	if adj.CurrentDifficulty() > 1000*16 {
		t.Fatalf("CurrentDifficulty() = %d, want <= %d", adj.CurrentDifficulty(), 1000*16)
	}
}

func TestSetBaseDifficulty(t *testing.T) {
	adj := NewDifficultyAdjuster(1000, 10, 100)
	adj.SetBaseDifficulty(2000)
	if adj.CurrentDifficulty() != 2000 {
		t.Fatalf("CurrentDifficulty() = %d, want 2000", adj.CurrentDifficulty())
	}
}
