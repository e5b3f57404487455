package sandbox

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockCommandRunner implements CommandRunner for testing
type MockCommandRunner struct {
	mu       sync.Mutex
	calls    []Command
	deadline []bool
	handler  func(ctx context.Context, cmd Command) (CommandResult, error)
}

func (m *MockCommandRunner) RunCommand(ctx context.Context, cmd Command) (CommandResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	_, hasDeadline := ctx.Deadline()
	m.deadline = append(m.deadline, hasDeadline)
	m.mu.Unlock()

	if m.handler != nil {
		return m.handler(ctx, cmd)
	}
	return CommandResult{}, nil
}

func (m *MockCommandRunner) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.calls...)
}

type mockFile struct {
	data    []byte
	perm    os.FileMode
	modTime time.Time
}

func (f mockFile) info(name string) os.FileInfo {
	return mockFileInfo{name: filepath.Base(name), file: f}
}

type mockFileInfo struct {
	name string
	file mockFile
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return int64(len(i.file.data)) }
func (i mockFileInfo) Mode() os.FileMode  { return i.file.perm }
func (i mockFileInfo) ModTime() time.Time { return i.file.modTime }
func (i mockFileInfo) IsDir() bool        { return false }
func (i mockFileInfo) Sys() any           { return nil }

// MockFileSystem implements FileSystem in memory for testing
type MockFileSystem struct {
	mu          sync.Mutex
	files       map[string]mockFile
	removed     []string
	mkdirErr    error
	writeErr    error
	removeErr   error
	globErr     error
	writeCalled int
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{files: make(map[string]mockFile)}
}

func (m *MockFileSystem) MkdirAll(string, os.FileMode) error {
	return m.mkdirErr
}

func (m *MockFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalled++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[filename] = mockFile{data: append([]byte(nil), data...), perm: perm, modTime: time.Now()}
	return nil
}

func (m *MockFileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	if _, ok := m.files[path]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(m.files, path)
	m.removed = append(m.removed, path)
	return nil
}

func (m *MockFileSystem) Glob(pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.globErr != nil {
		return nil, m.globErr
	}
	var out []string
	for name := range m.files {
		if ok, _ := filepath.Match(pattern, name); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return f.info(path), nil
}

// put adds a file with an explicit modification time.
func (m *MockFileSystem) put(path string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = mockFile{perm: FilePermission, modTime: modTime}
}

func (m *MockFileSystem) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for name := range m.files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *MockFileSystem) content(path string) (string, os.FileMode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	return string(f.data), f.perm, ok
}

// artifactArg returns the argument that names a program artifact.
func artifactArg(args []string) string {
	for _, a := range args {
		if strings.Contains(a, ArtifactPrefix) && strings.Contains(a, ArtifactSuffix) {
			if i := strings.Index(a, ":"); i > 0 {
				return a[:i]
			}
			return a
		}
	}
	return ""
}
