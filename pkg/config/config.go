// Package config provides a reusable loader for burstnode configuration
// files and environment variables, mirroring the teacher's pkg/config: a
// typed Config struct populated via viper, merged from defaults, an
// optional file, and environment overrides.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/burst-network/burstnode/ledgererr"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a burstnode instance, covering
// the storage layer, node identity/network flags, the BRN/TRST governed
// defaults, the pruner's schedule, and logging.
type Config struct {
	Storage struct {
		WalPath       string `mapstructure:"wal_path" json:"wal_path"`
		ReadCacheSize int    `mapstructure:"read_cache_size" json:"read_cache_size"`
	} `mapstructure:"storage" json:"storage"`

	Node struct {
		Network            string `mapstructure:"network" json:"network"`
		DataDir            string `mapstructure:"data_dir" json:"data_dir"`
		MaxPeers           int    `mapstructure:"max_peers" json:"max_peers"`
		Port               int    `mapstructure:"port" json:"port"`
		EnableVerification bool   `mapstructure:"enable_verification" json:"enable_verification"`
		EnableRPC          bool   `mapstructure:"enable_rpc" json:"enable_rpc"`
		RPCPort            int    `mapstructure:"rpc_port" json:"rpc_port"`
		EnableWebsocket    bool   `mapstructure:"enable_websocket" json:"enable_websocket"`
		WebsocketPort      int    `mapstructure:"websocket_port" json:"websocket_port"`
	} `mapstructure:"node" json:"node"`

	Brn struct {
		InitialRate       uint64 `mapstructure:"initial_rate" json:"initial_rate"`
		MaxClockDriftSecs uint64 `mapstructure:"max_clock_drift_secs" json:"max_clock_drift_secs"`
	} `mapstructure:"brn" json:"brn"`

	Trst struct {
		LifetimeSecs         uint64 `mapstructure:"lifetime_secs" json:"lifetime_secs"`
		ExpiryGraceSecs      uint64 `mapstructure:"expiry_grace_secs" json:"expiry_grace_secs"`
		PowDifficulty        uint64 `mapstructure:"pow_difficulty" json:"pow_difficulty"`
		EndorsementThreshold uint64 `mapstructure:"endorsement_threshold" json:"endorsement_threshold"`
	} `mapstructure:"trst" json:"trst"`

	Pruner struct {
		Enabled      bool   `mapstructure:"enabled" json:"enabled"`
		IntervalSecs uint64 `mapstructure:"interval_secs" json:"interval_secs"`
		BatchSize    int    `mapstructure:"batch_size" json:"batch_size"`
		PruneRevoked bool   `mapstructure:"prune_revoked" json:"prune_revoked"`
		ArchivePath  string `mapstructure:"archive_path" json:"archive_path"`
	} `mapstructure:"pruner" json:"pruner"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// activeViper is the instance Load last populated AppConfig from, kept
// around so WatchGovernance can attach a live-reload hook to the exact
// same viper instance (and its already-resolved config paths).
var activeViper *viper.Viper

// Active returns the viper instance behind the most recent successful
// Load/LoadFromEnv call, or nil if neither has run yet.
func Active() *viper.Viper { return activeViper }

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.wal_path", "data/wal.log")
	v.SetDefault("storage.read_cache_size", 4096)

	v.SetDefault("node.network", "burst-mainnet")
	v.SetDefault("node.data_dir", "data")
	v.SetDefault("node.max_peers", 64)
	v.SetDefault("node.port", 7777)
	v.SetDefault("node.enable_verification", true)
	v.SetDefault("node.enable_rpc", true)
	v.SetDefault("node.rpc_port", 7778)
	v.SetDefault("node.enable_websocket", false)
	v.SetDefault("node.websocket_port", 7779)

	v.SetDefault("brn.initial_rate", 10)
	v.SetDefault("brn.max_clock_drift_secs", 300)

	v.SetDefault("trst.lifetime_secs", 31_536_000) // one year
	v.SetDefault("trst.expiry_grace_secs", 86_400)
	v.SetDefault("trst.pow_difficulty", 16)
	v.SetDefault("trst.endorsement_threshold", 3)

	v.SetDefault("pruner.enabled", true)
	v.SetDefault("pruner.interval_secs", 3600)
	v.SetDefault("pruner.batch_size", 256)
	v.SetDefault("pruner.prune_revoked", false)
	v.SetDefault("pruner.archive_path", "data/pruned.zst")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

// Load reads burstnode.yaml from the "config" directory or the current
// directory, merges an optional environment
// specific overlay named after env, applies environment variable
// overrides, and stores the result in AppConfig.
func Load(env string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("burstnode")
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ledgererr.Wrap(ledgererr.KindBackend, err, "load config")
		}
	}

	if env != "" {
		v.SetConfigName(fmt.Sprintf("burstnode.%s", env))
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, ledgererr.Wrap(ledgererr.KindBackend, err, fmt.Sprintf("merge %s config", env))
			}
		}
	}

	v.SetEnvPrefix("BURST")
	v.AutomaticEnv()

	if err := v.Unmarshal(&AppConfig); err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindBackend, err, "unmarshal config")
	}
	activeViper = v
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the BURST_ENV environment variable
// to select the environment-specific overlay.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("BURST_ENV"))
}
