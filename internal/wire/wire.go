// Package wire provides dependency injection for the crudmaker application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/crudmaker/internal/adapters/cli"
	"github.com/example/crudmaker/internal/adapters/filesystem"
	"github.com/example/crudmaker/internal/adapters/sqlite"
	"github.com/example/crudmaker/internal/app"
	"github.com/example/crudmaker/internal/db"
	"github.com/example/crudmaker/internal/ports/primary"
	"github.com/example/crudmaker/internal/ports/secondary"
)

var (
	crudService primary.CrudService
	once        sync.Once
)

// CrudService returns the singleton CrudService instance.
func CrudService() primary.CrudService {
	once.Do(initServices)
	return crudService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	workspace := filesystem.NewWorkspaceAdapter()

	service := app.NewCrudService(workspace, openJournal, slog.Default())
	if path, err := db.DefaultPath(); err == nil {
		service = service.WithDefaultJournal(path)
	} else {
		slog.Debug("no default journal", "error", err)
	}
	crudService = service
}

// openJournal opens the sqlite journal at path.
func openJournal(path string) (secondary.JournalRepository, func() error, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewJournalRepository(database), database.Close, nil
}

// CrudAdapter returns a new CrudAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CrudAdapter() *cliadapter.CrudAdapter {
	return CrudAdapterWithOutput(os.Stdout)
}

// CrudAdapterWithOutput returns a new CrudAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func CrudAdapterWithOutput(out io.Writer) *cliadapter.CrudAdapter {
	once.Do(initServices)
	return cliadapter.NewCrudAdapter(crudService, out)
}
