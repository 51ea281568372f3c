package pruner

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/burst-network/burstnode/ledgererr"
)

// ZstdArchiver appends every pruned batch to a single zstd-compressed
// append-only file: a uint32 length prefix per block followed by its raw
// bytes, all flowing through one zstd.Encoder stream. Grounded on §11's
// "pruner archival uses klauspost/compress (zstd) for the removed-block
// archive" commitment.
type ZstdArchiver struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
}

// NewZstdArchiver opens (or creates) path and wraps it in a streaming zstd
// encoder. Callers must call Close when done archiving.
func NewZstdArchiver(path string) (*ZstdArchiver, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, ledgererr.Wrap(ledgererr.KindBackend, err, "pruner: open archive file")
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, ledgererr.Wrap(ledgererr.KindBackend, err, "pruner: init zstd encoder")
	}
	return &ZstdArchiver{f: f, enc: enc}, nil
}

// Archive writes batch's raw block bytes into the archive stream, each
// prefixed with its length so a later replay tool can frame them back out.
func (a *ZstdArchiver) Archive(batch [][]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var lenBuf [4]byte
	for _, raw := range batch {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(raw)))
		if _, err := a.enc.Write(lenBuf[:]); err != nil {
			return ledgererr.Wrap(ledgererr.KindBackend, err, "pruner: write archive length prefix")
		}
		if _, err := a.enc.Write(raw); err != nil {
			return ledgererr.Wrap(ledgererr.KindBackend, err, "pruner: write archive block bytes")
		}
	}
	return nil
}

// Close flushes the zstd stream and closes the underlying file.
func (a *ZstdArchiver) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enc.Close(); err != nil {
		return err
	}
	return a.f.Close()
}
