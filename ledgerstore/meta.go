package ledgerstore

import (
	"encoding/binary"
	"errors"

	"github.com/burst-network/burstnode/ledgererr"
)

const schemaVersionKey = "schema_version"

// PutMeta stores a metadata value, for internal bookkeeping that doesn't
// belong in any domain-specific table.
func (s *Store) PutMeta(key string, value []byte) error {
	t := s.Begin()
	cp := append([]byte(nil), value...)
	t.stagePut(TableMeta, key, cp, func() {
		s.meta[key] = cp
	})
	return t.Commit()
}

// GetMeta retrieves a metadata value.
func (s *Store) GetMeta(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.meta[key]
	if !ok {
		return nil, ledgererr.New(ledgererr.KindNotFound, "meta key %q not found", key)
	}
	return append([]byte(nil), v...), nil
}

// DeleteMeta removes a metadata entry.
func (s *Store) DeleteMeta(key string) error {
	t := s.Begin()
	t.stageDelete(TableMeta, key, func() {
		delete(s.meta, key)
	})
	return t.Commit()
}

// GetSchemaVersion returns the current database schema version, or 0 if
// none has ever been set (a fresh store).
func (s *Store) GetSchemaVersion() (uint32, error) {
	v, err := s.GetMeta(schemaVersionKey)
	if err != nil {
		if errors.Is(err, ledgererr.Sentinel(ledgererr.KindNotFound)) {
			return 0, nil
		}
		return 0, err
	}
	if len(v) != 4 {
		return 0, ledgererr.New(ledgererr.KindCorruption, "schema_version meta entry has length %d, want 4", len(v))
	}
	return binary.LittleEndian.Uint32(v), nil
}

// SetSchemaVersion persists the database schema version as 4 bytes,
// little-endian (§6's fixed-width meta encoding).
func (s *Store) SetSchemaVersion(version uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, version)
	return s.PutMeta(schemaVersionKey, buf)
}
