package config

import "testing"

func TestLoadAppliesDefaultsWithoutAFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Node.Port != 7777 {
		t.Fatalf("Node.Port = %d, want 7777", cfg.Node.Port)
	}
	if cfg.Trst.PowDifficulty != 16 {
		t.Fatalf("Trst.PowDifficulty = %d, want 16", cfg.Trst.PowDifficulty)
	}
	if cfg.Pruner.BatchSize != 256 {
		t.Fatalf("Pruner.BatchSize = %d, want 256", cfg.Pruner.BatchSize)
	}
	if Active() == nil {
		t.Fatalf("Active() = nil after a successful Load")
	}
}

func TestLoadFromEnvHonorsBurstEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BURST_ENV", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Node.Network != "burst-mainnet" {
		t.Fatalf("Node.Network = %q, want burst-mainnet", cfg.Node.Network)
	}
}
