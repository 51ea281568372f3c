package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/governance"
	"github.com/burst-network/burstnode/types"
)

// WatchGovernance enables viper's fsnotify-backed config file watch and
// forwards every reload's trst.* values into collab's setters, so a PoW
// difficulty or TRST lifetime change in the config file takes effect
// without a node restart (§10's "parameter-update callback is wired to
// this reload hook" commitment). A changed brn.initial_rate additionally
// triggers BroadcastRateChange at the moment of reload. v is typically
// config.Active(), the instance behind the most recent Load call.
func WatchGovernance(v *viper.Viper, collab *governance.DefaultCollaborator, logger *log.Logger) {
	if v == nil {
		return
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	lastRate := v.GetUint64("brn.initial_rate")

	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			logger.WithField("err", err).Warn("config reload: unmarshal failed, keeping prior governed parameters")
			return
		}

		collab.SetPowDifficulty(cfg.Trst.PowDifficulty)
		collab.SetTrstLifetime(cfg.Trst.LifetimeSecs)
		collab.SetEndorsementThreshold(cfg.Trst.EndorsementThreshold)

		if cfg.Brn.InitialRate != lastRate {
			collab.BroadcastRateChange(brn.NewAmount(cfg.Brn.InitialRate), types.Now())
			lastRate = cfg.Brn.InitialRate
		}

		logger.WithField("file", e.Name).Info("config reloaded, governed parameters updated")
	})
	v.WatchConfig()
}
