package artifact

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "artifact")

// ErrNotFound key 不存在或已过期
var ErrNotFound = errors.New("artifact: not found")

// Artifact 一次导出的产物
type Artifact struct {
	Name        string    `json:"name"` // 下载文件名（含扩展名）
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	Data        []byte    `json:"data"`
}

// Store 导出产物 KV（Badger），每个条目带 TTL
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

type OpenOptions struct {
	Path     string
	InMemory bool          // 测试用
	TTL      time.Duration // <= 0 表示永不过期
}

func Open(opts OpenOptions) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if strings.TrimSpace(opts.Path) == "" {
			return nil, errors.New("artifact: path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	db, err := badger.Open(bopts.WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "artifact: open badger")
	}
	return &Store{db: db, ttl: opts.TTL}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func key(id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("artifact: key is empty")
	}
	return []byte("artifact/" + id), nil
}

// Put 写入产物
func (s *Store) Put(id string, a Artifact) error {
	k, err := key(id)
	if err != nil {
		return err
	}
	val, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "artifact: encode")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(k, val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get 读取产物，不存在或已过期返回 ErrNotFound
func (s *Store) Get(id string) (Artifact, error) {
	k, err := key(id)
	if err != nil {
		return Artifact{}, err
	}
	var out Artifact
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return Artifact{}, err
	}
	return out, nil
}

// Delete 删除产物（不存在时不报错）
func (s *Store) Delete(id string) error {
	k, err := key(id)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

// RunGC 周期执行 value log GC（阻塞），ctx 结束后返回
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.db.Opts().InMemory {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for {
				if err := s.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						log.Debugf("value log gc: %v", err)
					}
					break
				}
			}
		}
	}
}
