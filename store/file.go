package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rushteam/mediarank/core"
)

// FileStore 是本地 JSON 文件实现的 Store，单机部署的默认后端。
//
// 所有键值保存在一个 JSON 文件中，打开时整体载入内存，
// 每次写入整体重写。重写采用先写临时文件再原子重命名的方式，
// 进程崩溃也不会留下半写状态。
type FileStore struct {
	path string

	mu   sync.RWMutex
	data map[string]fileEntry
}

type fileEntry struct {
	Value  []byte     `json:"value"`
	Expire *time.Time `json:"expire,omitempty"`
}

func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: make(map[string]fileEntry),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	e, ok := f.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if e.Expire != nil && time.Now().After(*e.Expire) {
		return nil, core.ErrStoreNotFound
	}
	return e.Value, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := fileEntry{Value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.Expire = &expire
	}
	f.data[key] = e
	return f.flush()
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.data, key)
	return f.flush()
}

func (f *FileStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		e, ok := f.data[k]
		if !ok {
			continue
		}
		if e.Expire != nil && now.After(*e.Expire) {
			continue
		}
		result[k] = e.Value
	}
	return result, nil
}

func (f *FileStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var expire *time.Time
	if len(ttl) > 0 && ttl[0] > 0 {
		t := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		expire = &t
	}
	for k, v := range kvs {
		f.data[k] = fileEntry{Value: v, Expire: expire}
	}
	return f.flush()
}

func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flush()
}

func (f *FileStore) load() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &f.data)
}

// flush 整体重写文件：先写临时文件，再原子重命名覆盖。
// 调用方必须持有写锁。
func (f *FileStore) flush() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

var _ core.Store = (*FileStore)(nil)
