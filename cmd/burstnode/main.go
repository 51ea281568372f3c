// Command burstnode runs (or exercises, in mock form) one burstnode
// ledger instance: opens the storage environment, wires the block
// processor and its collaborators, and runs the pruner on an interval.
// Mirrors the shape of the teacher's cmd/synnergy entrypoint: a cobra
// root command with small per-concern subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/blockproc"
	"github.com/burst-network/burstnode/brn"
	"github.com/burst-network/burstnode/confirmation"
	"github.com/burst-network/burstnode/pkg/config"
	"github.com/burst-network/burstnode/consensus"
	"github.com/burst-network/burstnode/countercache"
	"github.com/burst-network/burstnode/cryptocap"
	"github.com/burst-network/burstnode/governance"
	"github.com/burst-network/burstnode/ledgerstore"
	"github.com/burst-network/burstnode/pruner"
	"github.com/burst-network/burstnode/trst"
	"github.com/burst-network/burstnode/types"
	"github.com/burst-network/burstnode/verification"
)

func main() {
	rootCmd := &cobra.Command{Use: "burstnode"}
	rootCmd.AddCommand(nodeCmd())
	rootCmd.AddCommand(pruneCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nodeCmd starts the long-lived node process: load config, open storage,
// wire the processor and its collaborators, start the pruner loop and the
// config live-reload hook, then block until SIGINT/SIGTERM.
func nodeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "node", Short: "run a burstnode instance"}
	start := &cobra.Command{
		Use:   "start",
		Short: "start the node and block until shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			ingestFile, _ := cmd.Flags().GetString("ingest")
			return runNode(env, ingestFile)
		},
	}
	start.Flags().String("env", "", "environment overlay name (config/burstnode.<env>.yaml)")
	start.Flags().String("ingest", "", "path to a newline-delimited block file to ingest (reads stdin if unset)")
	cmd.AddCommand(start)
	return cmd
}

func runNode(env, ingestFile string) error {
	logger := log.StandardLogger()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := ledgerstore.Open(cfg.Storage.WalPath, cfg.Storage.ReadCacheSize, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	brnEngine := brn.NewEngine(0, logger)
	trstEngine := trst.NewEngine(store, store, store, cfg.Trst.LifetimeSecs, logger)
	cache := countercache.New(store.BlockCount(), store.AccountCount(), store.PendingCount())
	recent := confirmation.NewRecentlyConfirmed(4096)

	governanceCollab := governance.NewDefaultCollaborator(
		cfg.Trst.PowDifficulty, cfg.Trst.LifetimeSecs, cfg.Trst.EndorsementThreshold,
		brn.NewAmount(cfg.Brn.InitialRate),
	)
	consensusCollab := consensus.NewDefaultCollaborator()
	verificationCollab := verification.NewDefaultCollaborator()

	proc := blockproc.NewProcessor(
		store, brnEngine, trstEngine, cache, recent,
		cryptocap.Ed25519Verifier{},
		consensusCollab, verificationCollab, governanceCollab,
		cfg.Brn.MaxClockDriftSecs,
		logger, nil,
	)

	// proc itself implements verification.WalletStateSetter; wire it into
	// the verification collaborator now that both exist, so endorsements
	// reaching the governed threshold actually verify a wallet and fraud
	// adjudication can actually mass-revoke.
	verificationCollab.SetStateSetter(proc, governanceCollab.CurrentEndorsementThreshold)

	// Registers the per-wallet BRN rate-update routine: every config
	// live-reload that changes brn.initial_rate closes and reopens every
	// verified wallet's active rate segment (see pkg/config's reload hook).
	governanceCollab.OnRateChange(proc.ApplyRateChange)

	if v := config.Active(); v != nil {
		config.WatchGovernance(v, governanceCollab, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Pruner.Enabled {
		go runPrunerLoop(ctx, store, trstEngine, *cfg, logger)
	}

	go func() {
		src, closeSrc, err := openIngestSource(ingestFile)
		if err != nil {
			logger.WithField("err", err).Error("ingest: failed to open source, block ingestion disabled")
			return
		}
		if closeSrc != nil {
			defer closeSrc()
		}
		runIngestLoop(ctx, proc, src, logger)
	}()

	logger.WithFields(log.Fields{
		"network": cfg.Node.Network,
		"port":    cfg.Node.Port,
	}).Info("burstnode started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
	return nil
}

func runPrunerLoop(ctx context.Context, store *ledgerstore.Store, trstEngine *trst.Engine, cfg config.Config, logger *log.Logger) {
	archiver, err := pruner.NewZstdArchiver(cfg.Pruner.ArchivePath)
	if err != nil {
		logger.WithField("err", err).Error("pruner: failed to open archive, running without one")
		archiver = nil
	} else {
		defer archiver.Close()
	}

	p := pruner.New(store, trstEngine, archiveOrNil(archiver), logger)
	ticker := time.NewTicker(time.Duration(cfg.Pruner.IntervalSecs) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCfg := pruner.Config{
				PruneRevoked: cfg.Pruner.PruneRevoked,
				BatchSize:    cfg.Pruner.BatchSize,
				GraceSecs:    cfg.Trst.ExpiryGraceSecs,
			}
			n, err := p.Run(ctx, runCfg, types.Now())
			if err != nil {
				logger.WithField("err", err).Warn("pruner run failed")
				continue
			}
			if n > 0 {
				logger.WithField("pruned", n).Info("pruner run complete")
			}
		}
	}
}

// archiveOrNil avoids handing pruner.New a non-nil interface wrapping a nil
// *ZstdArchiver, which would make its own nil check on the interface
// ineffective.
func archiveOrNil(a *pruner.ZstdArchiver) pruner.Archiver {
	if a == nil {
		return nil
	}
	return a
}

// pruneCmd runs one pruner pass against an already-initialized data
// directory and exits, for operators driving pruning from cron rather than
// the node's own interval loop.
func pruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "run a single pruner pass against the configured storage environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := ledgerstore.Open(cfg.Storage.WalPath, cfg.Storage.ReadCacheSize, log.StandardLogger())
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			trstEngine := trst.NewEngine(store, store, store, cfg.Trst.LifetimeSecs, log.StandardLogger())
			archiver, err := pruner.NewZstdArchiver(cfg.Pruner.ArchivePath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer archiver.Close()

			p := pruner.New(store, trstEngine, archiver, log.StandardLogger())
			n, err := p.Run(context.Background(), pruner.Config{
				PruneRevoked: cfg.Pruner.PruneRevoked,
				BatchSize:    cfg.Pruner.BatchSize,
				GraceSecs:    cfg.Trst.ExpiryGraceSecs,
			}, types.Now())
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			fmt.Printf("pruned %d blocks\n", n)
			return nil
		},
	}
	cmd.Flags().String("env", "", "environment overlay name")
	return cmd
}
