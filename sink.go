package palnorm

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Sink creates the named artifacts a collection produces. Remove discards
// an artifact that could not be written completely.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
	Remove(name string) error
}

// DirSink writes artifacts as files in a directory, creating it on first
// use.
type DirSink string

// Create creates or truncates the named file.
func (d DirSink) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(string(d), name))
}

// Remove deletes the named file.
func (d DirSink) Remove(name string) error {
	return os.Remove(filepath.Join(string(d), name))
}

// MemSink keeps artifacts in memory. The zero value is ready to use.
type MemSink struct {
	mu    sync.Mutex
	files map[string][]byte
}

type memFile struct {
	bytes.Buffer
	name string
	sink *MemSink
}

func (f *memFile) Close() error {
	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	if f.sink.files == nil {
		f.sink.files = make(map[string][]byte)
	}
	f.sink.files[f.name] = f.Bytes()
	return nil
}

// Create returns a writer whose contents are stored under name when it is
// closed.
func (s *MemSink) Create(name string) (io.WriteCloser, error) {
	return &memFile{name: name, sink: s}, nil
}

// Remove forgets the named artifact.
func (s *MemSink) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

// File returns the contents of the named artifact.
func (s *MemSink) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	return b, ok
}

// Names returns the names of all artifacts in sorted order.
func (s *MemSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
