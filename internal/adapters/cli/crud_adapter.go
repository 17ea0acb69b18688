package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/crudmaker/internal/ports/primary"
)

// CrudAdapter is a thin adapter that translates CLI operations to CrudService calls.
// It depends only on the CrudService interface, enabling easy testing with mocks.
type CrudAdapter struct {
	service primary.CrudService
	out     io.Writer
}

// NewCrudAdapter creates a new CrudAdapter with the given service.
func NewCrudAdapter(service primary.CrudService, out io.Writer) *CrudAdapter {
	return &CrudAdapter{
		service: service,
		out:     out,
	}
}

// Generate runs a generation with a progress bar and prints the report.
func (a *CrudAdapter) Generate(ctx context.Context, req primary.GenerateRequest) (*primary.GenerateResponse, error) {
	if req.Progress == nil && !req.DryRun {
		req.Progress = NewProgressBar(a.out)
	}

	resp, err := a.service.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.DryRun {
		fmt.Fprintf(a.out, "Dry run for %s, nothing was written.\n", a.target(resp))
		fmt.Fprintf(a.out, "Templates: %s\n\n", resp.TemplateSource)
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		for _, f := range resp.Files {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%d bytes\n", f.Step, operationLabel(f.Operation), f.Path, f.Bytes)
		}
		w.Flush()
	} else {
		fmt.Fprintf(a.out, "%s Generated CRUD for %s\n", color.New(color.FgGreen).Sprint("✓"), a.target(resp))
		for _, line := range resp.Report {
			fmt.Fprintf(a.out, "  %s\n", line)
		}
		if resp.RunID != 0 {
			fmt.Fprintf(a.out, "  Journaled as run #%d\n", resp.RunID)
		}
	}

	if len(resp.NextSteps) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Next steps:")
		for _, step := range resp.NextSteps {
			fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgYellow).Sprint("→"), step)
		}
	}

	return resp, nil
}

func (a *CrudAdapter) target(resp *primary.GenerateResponse) string {
	if resp.Section == "" {
		return resp.TableName
	}
	return fmt.Sprintf("%s (section %s)", resp.TableName, resp.Section)
}

// History lists journaled runs. With showFiles every run's files follow it.
func (a *CrudAdapter) History(ctx context.Context, req primary.HistoryRequest, showFiles bool) ([]*primary.Run, error) {
	runs, err := a.service.History(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs journaled yet.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Record your next run:")
		fmt.Fprintln(a.out, "  crudmaker new shop_product --journal ~/.crudmaker/journal.db")
		return runs, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTABLE\tSECTION\tFRAMEWORK\tSTATUS\tFILES\tCREATED")
	fmt.Fprintln(w, "--\t-----\t-------\t---------\t------\t-----\t-------")

	for _, run := range runs {
		section := run.Section
		if section == "" {
			section = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.TableName,
			section,
			run.Framework,
			statusLabel(run.Status),
			len(run.Files),
			run.CreatedAt,
		)
	}
	w.Flush()

	if showFiles || req.RunID > 0 {
		for _, run := range runs {
			fmt.Fprintf(a.out, "\nRun #%d (%s)\n", run.ID, run.BasePath)
			if run.Error != "" {
				fmt.Fprintf(a.out, "  error: %s\n", run.Error)
			}
			for _, f := range run.Files {
				fmt.Fprintf(a.out, "  %-8s %s %s\n", f.Step, operationLabel(f.Operation), f.Path)
			}
		}
	}

	return runs, nil
}

// Publish copies the default templates into the project.
func (a *CrudAdapter) Publish(ctx context.Context, req primary.PublishRequest) (*primary.PublishResponse, error) {
	resp, err := a.service.Publish(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "%s Published %d templates to %s\n", color.New(color.FgGreen).Sprint("✓"), len(resp.Written), resp.TemplateDir)
	if len(resp.Skipped) > 0 {
		fmt.Fprintf(a.out, "  Kept %d existing templates (use --force to overwrite)\n", len(resp.Skipped))
	}
	if resp.ConfigPath != "" {
		fmt.Fprintf(a.out, "  Wrote %s\n", resp.ConfigPath)
	} else {
		fmt.Fprintln(a.out, "  Kept existing config")
	}
	return resp, nil
}

func operationLabel(op string) string {
	switch op {
	case "append":
		return color.New(color.FgBlue).Sprint("APPEND")
	default:
		return color.New(color.FgGreen).Sprint("CREATE")
	}
}

func statusLabel(status string) string {
	if status == "failed" {
		return color.New(color.FgRed).Sprint(status)
	}
	return status
}

// ProgressBar renders generation ticks as a single redrawn line.
type ProgressBar struct {
	out     io.Writer
	width   int
	total   int
	current int
}

var _ primary.ProgressObserver = (*ProgressBar)(nil)

// NewProgressBar creates a ProgressBar writing to out.
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out, width: 28}
}

// Start draws the empty bar.
func (p *ProgressBar) Start(total int) {
	p.total = total
	p.current = 0
	p.draw("")
}

// Advance moves the bar one tick; skipped steps are labelled as such.
func (p *ProgressBar) Advance(step string, ran bool) {
	p.current++
	label := step
	if !ran {
		label = color.New(color.Faint).Sprint(step + " (skipped)")
	}
	p.draw(label)
}

// Finish draws the final tick and ends the line.
func (p *ProgressBar) Finish() {
	p.current++
	p.draw("done")
	fmt.Fprintln(p.out)
}

func (p *ProgressBar) draw(label string) {
	filled := 0
	if p.total > 0 {
		filled = p.width * p.current / p.total
	}
	if filled > p.width {
		filled = p.width
	}
	bar := color.New(color.FgGreen).Sprint(strings.Repeat("=", filled)) + strings.Repeat(" ", p.width-filled)
	fmt.Fprintf(p.out, "\r[%s] %d/%d %-24s", bar, p.current, p.total, label)
}
