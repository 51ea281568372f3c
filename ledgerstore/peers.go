package ledgerstore

import "github.com/burst-network/burstnode/ledgererr"

// PutPeer records addr's last-seen Unix timestamp, so the node can
// reconnect on restart without relying solely on bootstrap peers.
func (s *Store) PutPeer(addr string, timestamp uint64) error {
	t := s.Begin()
	t.stagePut(TablePeers, addr, timestamp, func() {
		s.peers[addr] = timestamp
	})
	return t.Commit()
}

// GetPeer returns addr's last-seen timestamp, or KindNotFound if it isn't
// cached.
func (s *Store) GetPeer(addr string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.peers[addr]
	if !ok {
		return 0, ledgererr.New(ledgererr.KindNotFound, "peer %q not found", addr)
	}
	return ts, nil
}

// DeletePeer removes addr from the cache.
func (s *Store) DeletePeer(addr string) error {
	t := s.Begin()
	t.stageDelete(TablePeers, addr, func() {
		delete(s.peers, addr)
	})
	return t.Commit()
}

// PeerEntry is one (address, last-seen) pair returned by IterPeers.
type PeerEntry struct {
	Address   string
	Timestamp uint64
}

// IterPeers returns every cached peer.
func (s *Store) IterPeers() []PeerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PeerEntry, 0, len(s.peers))
	for addr, ts := range s.peers {
		out = append(out, PeerEntry{Address: addr, Timestamp: ts})
	}
	return out
}

// PurgeOlderThan removes every peer whose last-seen timestamp is strictly
// before cutoffSecs, returning the number removed.
func (s *Store) PurgeOlderThan(cutoffSecs uint64) (int, error) {
	s.mu.RLock()
	stale := make([]string, 0)
	for addr, ts := range s.peers {
		if ts < cutoffSecs {
			stale = append(stale, addr)
		}
	}
	s.mu.RUnlock()

	for _, addr := range stale {
		if err := s.DeletePeer(addr); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
