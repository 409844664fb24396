package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"article-catalog/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	gcSchedule     = "@every 5m"
	gcDiscardRatio = 0.7
)

// BadgerStore keeps articles as JSON values in an embedded Badger database.
type BadgerStore struct {
	db     *badger.DB
	gc     *cron.Cron
	logger *zap.Logger
}

// NewBadgerStore opens (or creates) the database at path and schedules
// value log garbage collection. An empty path opens an in-memory database.
func NewBadgerStore(path string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	s := &BadgerStore{db: db, logger: logger}

	// Value log GC is meaningless for an in-memory database.
	if path != "" {
		s.gc = cron.New()
		if _, err := s.gc.AddFunc(gcSchedule, s.runGC); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to schedule badger gc: %w", err)
		}
		s.gc.Start()
	}

	return s, nil
}

func (s *BadgerStore) runGC() {
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
			s.logger.Warn("badger value log gc failed", zap.Error(err))
		}
		return
	}
}

// Close stops the GC schedule and closes the database.
func (s *BadgerStore) Close() error {
	if s.gc != nil {
		<-s.gc.Stop().Done()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BadgerStore) Exists(ctx context.Context, code string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(articleKey(code)))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerStore) Save(ctx context.Context, article *model.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(articleKey(article.Code)), data))
	})
}

func (s *BadgerStore) Delete(ctx context.Context, code string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(articleKey(code)))
	})
}

func (s *BadgerStore) Get(ctx context.Context, code string) (*model.Article, error) {
	var article model.Article
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(articleKey(code)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &article)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// List iterates the article prefix, so results come back ordered by code.
func (s *BadgerStore) List(ctx context.Context) ([]model.Article, error) {
	articles := []model.Article{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var a model.Article
				if err := json.Unmarshal(val, &a); err != nil {
					return err
				}
				articles = append(articles, a)
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}
