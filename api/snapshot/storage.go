package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/morikuni/failure/v2"
)

// DirStorage keeps each namespace in a subdirectory of root
type DirStorage struct {
	root string
}

func NewDirStorage(root string) *DirStorage {
	return &DirStorage{root: root}
}

func (s *DirStorage) dir(ns string) string {
	return filepath.Join(s.root, filepath.Base(filepath.Clean("/"+ns)))
}

func (s *DirStorage) List(_ context.Context, ns string) ([]string, error) {
	entries, err := os.ReadDir(s.dir(ns))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, failure.Wrap(err, failure.WithCode(ErrStorage))
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *DirStorage) Read(_ context.Context, ns, name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.dir(ns), name))
	if err != nil {
		return nil, failure.Wrap(err, failure.WithCode(ErrStorage))
	}
	return b, nil
}

// Append writes data to a hidden temp file and links it into place, so
// readers never see a partial snapshot and an existing name is kept.
func (s *DirStorage) Append(_ context.Context, ns, name string, data []byte) error {
	dir := s.dir(ns)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure.Wrap(err, failure.WithCode(ErrStorage))
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return failure.Wrap(err, failure.WithCode(ErrStorage))
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return failure.Wrap(err, failure.WithCode(ErrStorage))
	}
	if err := tmp.Close(); err != nil {
		return failure.Wrap(err, failure.WithCode(ErrStorage))
	}
	if err := os.Link(tmpPath, filepath.Join(dir, name)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return failure.New(ErrExists, failure.Message("Snapshot already exists"))
		}
		return failure.Wrap(err, failure.WithCode(ErrStorage))
	}
	return nil
}

// MemStorage keeps snapshots in memory
type MemStorage struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string]map[string][]byte)}
}

func (s *MemStorage) List(_ context.Context, ns string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data[ns]))
	for name := range s.data[ns] {
		names = append(names, name)
	}
	return names, nil
}

func (s *MemStorage) Read(_ context.Context, ns, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[ns][name]
	if !ok {
		return nil, failure.New(ErrStorage, failure.Message("Snapshot not found"),
			failure.Context{"name": name})
	}
	return b, nil
}

func (s *MemStorage) Append(_ context.Context, ns, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[ns] == nil {
		s.data[ns] = make(map[string][]byte)
	}
	if _, ok := s.data[ns][name]; ok {
		return failure.New(ErrExists, failure.Message("Snapshot already exists"))
	}
	s.data[ns][name] = data
	return nil
}

// Put stores raw bytes under name, replacing nothing. Tests use it to
// plant corrupt snapshots.
func (s *MemStorage) Put(ns, name string, data []byte) error {
	return s.Append(context.Background(), ns, name, data)
}
