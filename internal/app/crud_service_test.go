package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/crudmaker/internal/ports/primary"
	"github.com/example/crudmaker/internal/scaffold"
)

type progressTick struct {
	step string
	ran  bool
}

// mockProgress implements primary.ProgressObserver for testing.
type mockProgress struct {
	total    int
	ticks    []progressTick
	finished bool
}

func (m *mockProgress) Start(total int) { m.total = total }
func (m *mockProgress) Advance(step string, ran bool) {
	m.ticks = append(m.ticks, progressTick{step, ran})
}
func (m *mockProgress) Finish() { m.finished = true }

func newTestCrudService(ws *mockWorkspace, journal *mockJournal) *CrudServiceImpl {
	var opener JournalOpener
	if journal != nil {
		opener = journal.opener(nil)
	}
	return NewCrudService(ws, opener, nil).WithClock(func() time.Time {
		return time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	})
}

func writeProjectFile(t *testing.T, base, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(base, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestGenerate(t *testing.T) {
	base := t.TempDir()
	ws := newMockWorkspace()
	progress := &mockProgress{}
	service := newTestCrudService(ws, nil)

	resp, err := service.Generate(context.Background(), primary.GenerateRequest{
		Table:    "posts",
		BasePath: base,
		Progress: progress,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.TableName != "posts" || resp.Section != "" {
		t.Errorf("TableName = %q Section = %q", resp.TableName, resp.Section)
	}
	if !strings.HasPrefix(resp.TemplateSource, "embedded:") {
		t.Errorf("TemplateSource = %q, want embedded templates", resp.TemplateSource)
	}

	for _, rel := range []string{
		"app/Repositories/Post/PostRepository.php",
		"app/Repositories/Post/Post.php",
		"app/Services/PostService.php",
		"app/Http/Requests/PostRequest.php",
		"app/Http/Controllers/PostsController.php",
		"resources/views/posts/index.blade.php",
		"tests/PostAcceptanceTest.php",
		"database/factories/ModelFactory.php",
	} {
		if _, ok := ws.files[filepath.Join(base, rel)]; !ok {
			t.Errorf("expected %s to be written", rel)
		}
	}
	if len(ws.writes) != len(resp.Files) {
		t.Errorf("workspace saw %d writes, response lists %d files", len(ws.writes), len(resp.Files))
	}

	if progress.total != 7 || len(progress.ticks) != 6 || !progress.finished {
		t.Errorf("progress total=%d ticks=%d finished=%v", progress.total, len(progress.ticks), progress.finished)
	}
	if len(resp.NextSteps) == 0 || !strings.Contains(resp.NextSteps[0], "migration") {
		t.Errorf("NextSteps = %v, want missing migration warning first", resp.NextSteps)
	}
	if resp.RunID != 0 {
		t.Errorf("RunID = %d without a journal", resp.RunID)
	}
}

func TestGenerate_DryRun(t *testing.T) {
	ws := newMockWorkspace()
	journal := &mockJournal{}
	service := newTestCrudService(ws, journal)

	resp, err := service.Generate(context.Background(), primary.GenerateRequest{
		Table:       "shop_product",
		BasePath:    t.TempDir(),
		Migration:   true,
		Schema:      "id,increments,name:string",
		DryRun:      true,
		JournalPath: "journal.db",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(ws.files) != 0 || len(ws.dirs) != 0 {
		t.Errorf("dry run touched the workspace: %d files, %d dirs", len(ws.files), len(ws.dirs))
	}
	if len(journal.runs) != 0 {
		t.Error("dry run was journaled")
	}
	if resp.Section != "Shop" || resp.TableName != "shop_products" {
		t.Errorf("Section = %q TableName = %q", resp.Section, resp.TableName)
	}

	var migration bool
	for _, f := range resp.Files {
		if strings.HasSuffix(f.Path, "2024_03_04_050607_create_shop_products_table.php") {
			migration = f.Step == "database"
		}
	}
	if !migration {
		t.Errorf("dry run files do not list the migration: %+v", resp.Files)
	}
}

func TestGenerate_Journal(t *testing.T) {
	base := t.TempDir()
	journal := &mockJournal{}
	var openedPath string
	service := NewCrudService(newMockWorkspace(), journal.opener(&openedPath), nil)

	resp, err := service.Generate(context.Background(), primary.GenerateRequest{
		Table:       "posts",
		BasePath:    base,
		API:         true,
		JournalPath: "/var/journal.db",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if openedPath != "/var/journal.db" {
		t.Errorf("opened journal %q", openedPath)
	}
	if !journal.closed {
		t.Error("journal was not closed")
	}
	if len(journal.runs) != 1 {
		t.Fatalf("journaled %d runs, want 1", len(journal.runs))
	}

	run := journal.runs[0]
	if resp.RunID != run.ID {
		t.Errorf("RunID = %d, want %d", resp.RunID, run.ID)
	}
	if run.Status != RunCompleted || run.Framework != "Laravel" || run.BasePath != base {
		t.Errorf("run = %+v", run)
	}
	if !strings.Contains(run.Options, `"api":true`) {
		t.Errorf("Options = %s", run.Options)
	}
	if len(run.Artifacts) != len(resp.Files) {
		t.Errorf("journaled %d artifacts, response lists %d files", len(run.Artifacts), len(resp.Files))
	}
}

func TestGenerate_JournalFromConfig(t *testing.T) {
	base := t.TempDir()
	writeProjectFile(t, base, "crudmaker.toml", "journal = \"var/journal.db\"\n")

	journal := &mockJournal{}
	var openedPath string
	service := NewCrudService(newMockWorkspace(), journal.opener(&openedPath), nil)

	if _, err := service.Generate(context.Background(), primary.GenerateRequest{Table: "posts", BasePath: base}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if want := filepath.Join(base, "var", "journal.db"); openedPath != want {
		t.Errorf("opened journal %q, want %q", openedPath, want)
	}
}

func TestGenerate_WriteFailure(t *testing.T) {
	ws := newMockWorkspace()
	ws.failOn = "PostRepositoryTest.php"
	journal := &mockJournal{}
	progress := &mockProgress{}
	service := newTestCrudService(ws, journal)

	_, err := service.Generate(context.Background(), primary.GenerateRequest{
		Table:       "posts",
		BasePath:    t.TempDir(),
		JournalPath: "journal.db",
		Progress:    progress,
	})

	var genErr *scaffold.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate error = %v, want *GenerationError", err)
	}
	if genErr.Step != "tests" {
		t.Errorf("failed step = %q, want tests", genErr.Step)
	}
	if progress.finished {
		t.Error("progress finished after a failure")
	}

	if len(journal.runs) != 1 {
		t.Fatalf("journaled %d runs, want 1", len(journal.runs))
	}
	run := journal.runs[0]
	if run.Status != RunFailed || run.Error == "" {
		t.Errorf("run status = %q error = %q", run.Status, run.Error)
	}
	for _, a := range run.Artifacts {
		if a.Step != "core" && a.Step != "app" {
			t.Errorf("journaled artifact from step %s that never completed", a.Step)
		}
	}
}

func TestGenerate_CancelledRunIsJournaled(t *testing.T) {
	ws := newMockWorkspace()
	journal := &mockJournal{}
	service := newTestCrudService(ws, journal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Generate(ctx, primary.GenerateRequest{
		Table:       "posts",
		BasePath:    t.TempDir(),
		JournalPath: "journal.db",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate error = %v, want context.Canceled", err)
	}
	if len(ws.writes) != 0 {
		t.Errorf("cancelled run wrote %v", ws.writes)
	}
	if len(journal.runs) != 1 {
		t.Fatalf("journaled %d runs, want 1", len(journal.runs))
	}
	if run := journal.runs[0]; run.Status != RunFailed || len(run.Artifacts) != 0 {
		t.Errorf("run status = %q artifacts = %d", run.Status, len(run.Artifacts))
	}
}

func TestGenerate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     primary.GenerateRequest
		wantErr error
	}{
		{
			name:    "bad schema type",
			req:     primary.GenerateRequest{Table: "posts", Migration: true, Schema: "name:bogus"},
			wantErr: scaffold.ErrInvalidSchema,
		},
		{
			name:    "schema without migration",
			req:     primary.GenerateRequest{Table: "posts", Schema: "name:string"},
			wantErr: scaffold.ErrConfiguration,
		},
		{
			name:    "bad relationship",
			req:     primary.GenerateRequest{Table: "posts", Relationships: "hasOne|App\\User"},
			wantErr: scaffold.ErrInvalidRelationship,
		},
		{
			name:    "two separators",
			req:     primary.GenerateRequest{Table: "a_b_c"},
			wantErr: scaffold.ErrConfiguration,
		},
		{
			name:    "unknown framework",
			req:     primary.GenerateRequest{Table: "posts", Framework: "rails"},
			wantErr: scaffold.ErrConfiguration,
		},
		{
			name:    "missing config file",
			req:     primary.GenerateRequest{Table: "posts", ConfigPath: "missing.toml"},
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newMockWorkspace()
			journal := &mockJournal{}
			service := newTestCrudService(ws, journal)

			tt.req.BasePath = t.TempDir()
			tt.req.JournalPath = "journal.db"
			_, err := service.Generate(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(ws.writes) != 0 || len(ws.dirs) != 0 {
				t.Errorf("workspace touched before validation failed: %v", ws.writes)
			}
			if len(journal.runs) != 0 {
				t.Error("rejected invocation was journaled")
			}
		})
	}
}

func TestGenerate_TemplateSourceFromConfig(t *testing.T) {
	base := t.TempDir()
	writeProjectFile(t, base, "crudmaker.toml", "template_source = \"missing-templates\"\n")

	ws := newMockWorkspace()
	_, err := newTestCrudService(ws, nil).Generate(context.Background(), primary.GenerateRequest{Table: "posts", BasePath: base})
	if !errors.Is(err, scaffold.ErrTemplateResolution) {
		t.Fatalf("Generate error = %v, want ErrTemplateResolution", err)
	}
	if len(ws.writes) != 0 {
		t.Error("files written without templates")
	}
}

func TestGenerate_ConfigAndComposer(t *testing.T) {
	base := t.TempDir()
	writeProjectFile(t, base, "composer.json", `{"autoload": {"psr-4": {"Acme\\": "app/"}}}`)
	writeProjectFile(t, base, "crudmaker.toml", `framework = "lumen"

[single]
_path_tests_ = "`+filepath.ToSlash(filepath.Join(base, "tests", "Unit"))+`"
`)

	ws := newMockWorkspace()
	resp, err := newTestCrudService(ws, nil).Generate(context.Background(), primary.GenerateRequest{Table: "posts", BasePath: base})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	repo := string(ws.files[filepath.Join(base, "app", "Repositories", "Post", "PostRepository.php")])
	if !strings.Contains(repo, `namespace Acme\Repositories\Post;`) {
		t.Errorf("repository namespace not taken from composer.json:\n%s", repo)
	}
	if _, ok := ws.files[filepath.Join(base, "tests", "Unit", "PostServiceTest.php")]; !ok {
		t.Error("config override for _path_tests_ was ignored")
	}
	for _, f := range resp.Files {
		if strings.HasSuffix(f.Path, "PostRequest.php") {
			t.Error("lumen run generated a form request")
		}
	}
}

func TestHistory(t *testing.T) {
	journal := &mockJournal{}
	service := newTestCrudService(newMockWorkspace(), journal)
	base := t.TempDir()

	for _, table := range []string{"posts", "blog_comment"} {
		_, err := service.Generate(context.Background(), primary.GenerateRequest{Table: table, BasePath: base, JournalPath: "journal.db"})
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", table, err)
		}
	}

	runs, err := service.History(context.Background(), primary.HistoryRequest{BasePath: base, JournalPath: "journal.db", Limit: 1})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("History returned %d runs, want 1", len(runs))
	}
	if runs[0].TableName != "blog_comments" || runs[0].Section != "Blog" {
		t.Errorf("latest run = %+v", runs[0])
	}
	if len(runs[0].Files) == 0 {
		t.Error("run has no files")
	}
}

func TestHistory_SingleRun(t *testing.T) {
	journal := &mockJournal{}
	service := newTestCrudService(newMockWorkspace(), journal)
	base := t.TempDir()

	for _, table := range []string{"posts", "blog_comment"} {
		_, err := service.Generate(context.Background(), primary.GenerateRequest{Table: table, BasePath: base, JournalPath: "journal.db"})
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", table, err)
		}
	}

	runs, err := service.History(context.Background(), primary.HistoryRequest{BasePath: base, JournalPath: "journal.db", RunID: 1})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != 1 || runs[0].TableName != "posts" {
		t.Fatalf("History(run 1) = %+v", runs)
	}

	if _, err := service.History(context.Background(), primary.HistoryRequest{BasePath: base, JournalPath: "journal.db", RunID: 9}); err == nil {
		t.Error("expected error for an unknown run")
	}
}

func TestHistory_NoJournal(t *testing.T) {
	service := newTestCrudService(newMockWorkspace(), &mockJournal{})
	_, err := service.History(context.Background(), primary.HistoryRequest{BasePath: t.TempDir()})
	if !errors.Is(err, scaffold.ErrConfiguration) {
		t.Errorf("History error = %v, want ErrConfiguration", err)
	}
}

func TestPublish(t *testing.T) {
	base := t.TempDir()
	ws := newMockWorkspace()
	service := newTestCrudService(ws, nil)

	resp, err := service.Publish(context.Background(), primary.PublishRequest{BasePath: base, Framework: "lumen"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if want := filepath.Join(base, "resources", "crudmaker", "crud"); resp.TemplateDir != want {
		t.Errorf("TemplateDir = %q, want %q", resp.TemplateDir, want)
	}
	if len(resp.Written) == 0 || len(resp.Skipped) != 0 {
		t.Errorf("written %d skipped %d", len(resp.Written), len(resp.Skipped))
	}
	if _, ok := ws.files[filepath.Join(resp.TemplateDir, "Repository.tmpl")]; !ok {
		t.Error("Repository.tmpl not published")
	}
	if _, ok := ws.files[filepath.Join(resp.TemplateDir, "Request.tmpl")]; ok {
		t.Error("lumen publish copied the laravel-only request template")
	}

	cfg := string(ws.files[resp.ConfigPath])
	if resp.ConfigPath != filepath.Join(base, "crudmaker.toml") || !strings.Contains(cfg, `framework = "lumen"`) {
		t.Errorf("config %s:\n%s", resp.ConfigPath, cfg)
	}

	// a second publish keeps what is there
	again, err := service.Publish(context.Background(), primary.PublishRequest{BasePath: base, Framework: "lumen"})
	if err != nil {
		t.Fatalf("second Publish failed: %v", err)
	}
	if len(again.Written) != 0 || len(again.Skipped) != len(resp.Written) {
		t.Errorf("second publish wrote %d, skipped %d", len(again.Written), len(again.Skipped))
	}

	forced, err := service.Publish(context.Background(), primary.PublishRequest{BasePath: base, Framework: "lumen", Force: true})
	if err != nil {
		t.Fatalf("forced Publish failed: %v", err)
	}
	if len(forced.Written) != len(resp.Written) {
		t.Errorf("forced publish wrote %d, want %d", len(forced.Written), len(resp.Written))
	}
}

func TestPublish_KeepsExistingConfig(t *testing.T) {
	base := t.TempDir()
	writeProjectFile(t, base, "crudmaker.yaml", "framework: laravel\n")

	ws := newMockWorkspace()
	resp, err := newTestCrudService(ws, nil).Publish(context.Background(), primary.PublishRequest{BasePath: base})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if resp.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want existing config kept", resp.ConfigPath)
	}
	if _, ok := ws.files[filepath.Join(resp.TemplateDir, "Request.tmpl")]; !ok {
		t.Error("framework from config was not used")
	}
}

func TestGenerate_RecordUsesDefaultJournal(t *testing.T) {
	journal := &mockJournal{}
	var openedPath string
	service := NewCrudService(newMockWorkspace(), journal.opener(&openedPath), nil).WithDefaultJournal("/home/dev/.crudmaker/journal.db")
	base := t.TempDir()

	if _, err := service.Generate(context.Background(), primary.GenerateRequest{Table: "posts", BasePath: base}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if openedPath != "" || len(journal.runs) != 0 {
		t.Errorf("run journaled to %q without --record", openedPath)
	}

	if _, err := service.Generate(context.Background(), primary.GenerateRequest{Table: "posts", BasePath: base, Record: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if openedPath != "/home/dev/.crudmaker/journal.db" || len(journal.runs) != 1 {
		t.Errorf("opened %q, journaled %d runs", openedPath, len(journal.runs))
	}

	runs, err := service.History(context.Background(), primary.HistoryRequest{BasePath: base})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("History returned %d runs from the default journal, want 1", len(runs))
	}
}
