package relay

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/vfs"

	"github.com/parleychat/parley/internal/remote"
)

// Store persists room records in Pebble. Keys are "r:" + room + NUL + push
// key, so one room's records sort together in push-key (creation) order.
type Store struct {
	db *pebble.DB
}

// OpenStore opens the store in dir. An empty dir keeps everything in
// memory.
func OpenStore(dir string) (*Store, error) {
	opts := &pebble.Options{}
	path := filepath.Clean(dir)
	if dir == "" {
		opts.FS = vfs.NewMem()
		path = "relay"
	} else if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func roomPrefix(room string) []byte {
	return []byte("r:" + room + "\x00")
}

func recordKey(room, key string) []byte {
	return append(roomPrefix(room), key...)
}

// Put stores rec in room.
func (s *Store) Put(room string, rec remote.Record) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Set(recordKey(room, rec.Key), val, pebble.Sync)
}

// Get loads one record. The boolean is false when it does not exist.
func (s *Store) Get(room, key string) (remote.Record, bool, error) {
	val, closer, err := s.db.Get(recordKey(room, key))
	if err == pebble.ErrNotFound {
		return remote.Record{}, false, nil
	}
	if err != nil {
		return remote.Record{}, false, err
	}
	defer closer.Close()

	var rec remote.Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return remote.Record{}, false, err
	}
	return rec, true, nil
}

// Delete removes one record.
func (s *Store) Delete(room, key string) error {
	return s.db.Delete(recordKey(room, key), pebble.Sync)
}

// List returns every record of room in key order.
func (s *Store) List(room string) ([]remote.Record, error) {
	prefix := roomPrefix(room)
	upper := append([]byte(nil), prefix...)
	upper[len(upper)-1] = 0x01

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []remote.Record
	for ok := iter.First(); ok; ok = iter.Next() {
		var rec remote.Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
