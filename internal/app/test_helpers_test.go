package app

import (
	"context"
	"errors"
	"strings"

	"github.com/example/crudmaker/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.Workspace         = (*mockWorkspace)(nil)
	_ secondary.JournalRepository = (*mockJournal)(nil)
)

// mockWorkspace implements secondary.Workspace in memory.
type mockWorkspace struct {
	dirs   map[string]bool
	files  map[string][]byte
	writes []string // paths in write order, appends included
	failOn string   // path suffix that fails to write
}

func newMockWorkspace() *mockWorkspace {
	return &mockWorkspace{
		dirs:  make(map[string]bool),
		files: make(map[string][]byte),
	}
}

func (m *mockWorkspace) CreateDirectory(ctx context.Context, path string, mode uint32) error {
	m.dirs[path] = true
	return nil
}

func (m *mockWorkspace) DirectoryExists(ctx context.Context, path string) (bool, error) {
	return m.dirs[path], nil
}

func (m *mockWorkspace) FileExists(ctx context.Context, path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *mockWorkspace) WriteFile(ctx context.Context, path string, content []byte, mode uint32) error {
	if m.failOn != "" && strings.HasSuffix(path, m.failOn) {
		return errors.New("disk full")
	}
	m.files[path] = append([]byte(nil), content...)
	m.writes = append(m.writes, path)
	return nil
}

func (m *mockWorkspace) AppendFile(ctx context.Context, path string, content []byte, mode uint32) error {
	if m.failOn != "" && strings.HasSuffix(path, m.failOn) {
		return errors.New("disk full")
	}
	m.files[path] = append(m.files[path], content...)
	m.writes = append(m.writes, path)
	return nil
}

// mockJournal implements secondary.JournalRepository in memory.
type mockJournal struct {
	runs      []*secondary.RunRecord
	createErr error
	closed    bool
}

func (m *mockJournal) CreateRun(ctx context.Context, run *secondary.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	run.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockJournal) GetRun(ctx context.Context, id int64) (*secondary.RunRecord, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("run not found")
}

func (m *mockJournal) ListRuns(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	var out []*secondary.RunRecord
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.runs[i])
	}
	return out, nil
}

// opener returns a JournalOpener serving m and recording the path asked for.
func (m *mockJournal) opener(path *string) JournalOpener {
	return func(p string) (secondary.JournalRepository, func() error, error) {
		if path != nil {
			*path = p
		}
		return m, func() error { m.closed = true; return nil }, nil
	}
}
