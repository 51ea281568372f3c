package ledgerstore

import (
	"github.com/sirupsen/logrus"

	"github.com/burst-network/burstnode/ledgererr"
)

// CurrentSchemaVersion is the schema version this code expects. A stored
// version of 0 means a fresh database; one higher than this means the data
// was written by a newer node and must be rejected.
const CurrentSchemaVersion uint32 = 2

// Migrator brings an older database's schema up to CurrentSchemaVersion by
// running sequential migration steps, tracked as a monotonic version in the
// meta table.
type Migrator struct {
	log *logrus.Logger
}

// NewMigrator returns a Migrator that logs through logger (or the standard
// logger if nil).
func NewMigrator(logger *logrus.Logger) *Migrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migrator{log: logger}
}

// Run checks the store's stored schema version and runs any migrations
// needed to reach CurrentSchemaVersion.
func (m *Migrator) Run(s *Store) error {
	current, err := s.GetSchemaVersion()
	if err != nil {
		return err
	}

	if current == CurrentSchemaVersion {
		m.log.WithField("version", current).Info("database schema is up to date")
		return nil
	}
	if current > CurrentSchemaVersion {
		return ledgererr.New(ledgererr.KindCorruption,
			"database schema version %d is newer than supported version %d", current, CurrentSchemaVersion)
	}

	for v := current; v < CurrentSchemaVersion; v++ {
		m.log.WithFields(logrus.Fields{"from": v, "to": v + 1}).Info("running migration")
		if err := runMigration(v, v+1); err != nil {
			return err
		}
	}

	if err := s.SetSchemaVersion(CurrentSchemaVersion); err != nil {
		return err
	}
	m.log.WithField("version", CurrentSchemaVersion).Info("migration complete")
	return nil
}

// runMigration applies one schema step. Both of this schema's steps are
// no-ops against a blank node (no production data predates version 2), but
// the dispatch stays in place so a future schema change has somewhere to
// live.
func runMigration(from, to uint32) error {
	switch {
	case from == 0 && to == 1:
		return nil
	case from == 1 && to == 2:
		return nil
	default:
		return ledgererr.New(ledgererr.KindCorruption, "unknown migration: %d -> %d", from, to)
	}
}
