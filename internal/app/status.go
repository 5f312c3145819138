package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/logtail"
)

// StatusOptions select what the status command prints.
type StatusOptions struct {
	ConfigPath string
	GradeID    string // empty lists every grade of the school
	Out        io.Writer
}

// Status prints the grades of the configured school, or the generation
// status of a single grade.
func Status(ctx context.Context, opts StatusOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	e, err := bootstrap(opts.ConfigPath, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if id := strings.TrimSpace(opts.GradeID); id != "" {
		st, err := e.client.FetchGenerationStatus(ctx, e.cfg.EscolaID, id)
		if err != nil {
			return fmt.Errorf("fetch status: %w", err)
		}
		fmt.Fprintf(out, "%s: %s\n", id, st.Status.Label())
		for _, msg := range st.Errors {
			if msg = strings.TrimSpace(msg); msg != "" {
				fmt.Fprintf(out, "  - %s\n", msg)
			}
		}
		return nil
	}

	grades, err := e.client.ListGrades(ctx, e.cfg.EscolaID)
	if err != nil {
		return fmt.Errorf("list grades: %w", err)
	}
	fmt.Fprintln(out, gradeTable(grades))
	return nil
}

func gradeTable(grades []gradeapi.Grade) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NOME", "STATUS", "ATUALIZADA")
	for _, g := range grades {
		updated := "—"
		if ts := g.ParsedUpdatedAt(); !ts.IsZero() {
			updated = ts.Format("2006-01-02 15:04")
		}
		t.Row(g.ID, displayGradeName(g), g.Status.Label(), updated)
	}
	return t.String()
}

// LogsOptions select which log lines to print.
type LogsOptions struct {
	ConfigPath string
	GradeID    string
	Lines      int
	Out        io.Writer
}

// Logs prints the tail of the gradewatch log file.
func Logs(opts LogsOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	e, err := bootstrap(opts.ConfigPath, nil)
	if err != nil {
		return err
	}
	defer e.close()

	lines, err := logtail.Read(e.cfg.LogFile, logtail.Query{MaxLines: opts.Lines, GradeID: opts.GradeID})
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
