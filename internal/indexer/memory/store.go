package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/Adithya-Monish-Kumar-K/tracksearch/internal/indexer"
)

const docKeyPrefix = "doc:"

// docStore persists raw documents in badger so the in-memory postings can
// be rebuilt when the engine is reopened.
type docStore struct {
	db *badger.DB
}

type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLogger) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLogger) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLogger) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// openStore opens the badger directory at dir, or an in-memory store when
// dir is empty.
func openStore(dir string, logger *slog.Logger) (*docStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		opts = badger.DefaultOptions(dir).WithCompression(options.ZSTD)
	}
	opts = opts.WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}
	return &docStore{db: db}, nil
}

func (s *docStore) put(docs []indexer.Document) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, doc := range docs {
		value, err := json.Marshal(doc.Fields)
		if err != nil {
			return fmt.Errorf("encoding document %s: %w", doc.ID, err)
		}
		if err := wb.Set([]byte(docKeyPrefix+doc.ID), value); err != nil {
			return fmt.Errorf("staging document %s: %w", doc.ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing write batch: %w", err)
	}
	return nil
}

func (s *docStore) each(fn func(indexer.Document) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docKeyPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id := string(item.Key()[len(docKeyPrefix):])
			var fields map[string]string
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &fields)
			})
			if err != nil {
				return fmt.Errorf("decoding document %s: %w", id, err)
			}
			if err := fn(indexer.Document{ID: id, Fields: fields}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *docStore) close() error {
	return s.db.Close()
}
