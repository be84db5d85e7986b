package status

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// BadgerSinkConfig configures a badgerSink.
type BadgerSinkConfig struct {
	// Dir is the on-disk directory BadgerDB stores its files in.
	Dir string
	// Capacity bounds the ring buffer: once Capacity snapshots have
	// been recorded, the oldest is evicted to make room for the
	// newest. Zero means unbounded.
	Capacity int
}

// badgerSink persists Snapshots to a local embedded BadgerDB, keyed by
// a monotonic sequence number so the oldest entries can be evicted
// once Capacity is reached -- a ring buffer of recent status snapshots
// for post-crash diagnostics, grounded on the key/transaction idiom in
// pkg/metadata/store/badger (badgerdb.DB, db.Update/db.View, big-endian
// sequence keys).
type badgerSink struct {
	db       *badgerdb.DB
	capacity int

	mu   sync.Mutex
	next uint64
}

const badgerSnapshotPrefix = "snapshot:"

// NewBadgerSink opens (creating if necessary) a BadgerDB at cfg.Dir.
func NewBadgerSink(cfg BadgerSinkConfig) (Sink, error) {
	opts := badgerdb.DefaultOptions(cfg.Dir)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("status: open badger at %s: %w", cfg.Dir, err)
	}

	sink := &badgerSink{db: db, capacity: cfg.Capacity}
	if err := sink.loadNextSequence(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *badgerSink) loadNextSequence() error {
	return s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(badgerSnapshotPrefix)
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := append([]byte(badgerSnapshotPrefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		it.Seek(seekKey)
		if it.ValidForPrefix([]byte(badgerSnapshotPrefix)) {
			key := it.Item().Key()
			seq := binary.BigEndian.Uint64(key[len(badgerSnapshotPrefix):])
			s.next = seq + 1
		}
		return nil
	})
}

func (s *badgerSink) Record(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("status: marshal snapshot: %w", err)
	}

	s.mu.Lock()
	seq := s.next
	s.next++
	s.mu.Unlock()

	key := snapshotKey(seq)
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, payload)
	}); err != nil {
		return fmt.Errorf("status: write snapshot: %w", err)
	}

	if s.capacity > 0 && seq >= uint64(s.capacity) {
		return s.evictBefore(seq - uint64(s.capacity) + 1)
	}
	return nil
}

func snapshotKey(seq uint64) []byte {
	key := make([]byte, len(badgerSnapshotPrefix)+8)
	copy(key, badgerSnapshotPrefix)
	binary.BigEndian.PutUint64(key[len(badgerSnapshotPrefix):], seq)
	return key
}

// evictBefore deletes every snapshot with sequence number strictly
// less than keepFrom, keeping the ring buffer at capacity.
func (s *badgerSink) evictBefore(keepFrom uint64) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(badgerSnapshotPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var toDelete [][]byte
		for it.Seek([]byte(badgerSnapshotPrefix)); it.ValidForPrefix([]byte(badgerSnapshotPrefix)); it.Next() {
			key := it.Item().KeyCopy(nil)
			seq := binary.BigEndian.Uint64(key[len(badgerSnapshotPrefix):])
			if seq >= keepFrom {
				break
			}
			toDelete = append(toDelete, key)
		}
		for _, key := range toDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerSink) Close() error {
	return s.db.Close()
}
