package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/logging"
	"github.com/gradehoraria/gradewatch/internal/notify"
	"github.com/gradehoraria/gradewatch/internal/poller"
)

var (
	// ErrGenerationFailed reports a generation job that ended in the error state.
	ErrGenerationFailed = errors.New("grade generation failed")
	// ErrGradeVanished reports a job that disappeared before finishing.
	ErrGradeVanished = errors.New("grade no longer exists")
)

// GenerateOptions configure a one-shot generation request.
type GenerateOptions struct {
	ConfigPath string
	Name       string
	TurmaIDs   []string
	PollEvery  time.Duration // zero uses the configured poll interval
	Out        io.Writer
}

type outcome struct {
	status gradeapi.Status
	errs   []string
}

// notFoundFetcher reports ids the backend no longer knows. The poller drops
// those silently, so the command would otherwise wait forever.
type notFoundFetcher struct {
	poller.Fetcher
	onNotFound func(id string)
}

func (f notFoundFetcher) FetchGenerationStatus(ctx context.Context, escolaID, gradeID string) (*gradeapi.GenerationStatus, error) {
	st, err := f.Fetcher.FetchGenerationStatus(ctx, escolaID, gradeID)
	if errors.Is(err, gradeapi.ErrNotFound) {
		f.onNotFound(gradeID)
	}
	return st, err
}

// Generate requests a new grade and blocks until the job reaches a terminal
// state or ctx is cancelled.
func Generate(ctx context.Context, opts GenerateOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return fmt.Errorf("grade name required")
	}

	e, err := bootstrap(opts.ConfigPath, nil)
	if err != nil {
		return err
	}
	defer e.close()
	log := logging.Component(e.log, "generate")

	grade, err := e.client.RequestGeneration(ctx, e.cfg.EscolaID, gradeapi.GenerateRequest{
		Name:     name,
		TurmaIDs: opts.TurmaIDs,
	})
	if err != nil {
		return fmt.Errorf("request generation: %w", err)
	}
	log.WithFields(logrus.Fields{"grade_id": grade.ID, "escola_id": grade.EscolaID}).Info("generation requested")
	fmt.Fprintf(out, "Geração solicitada: %s (%s)\n", displayGradeName(*grade), grade.ID)

	if grade.Status.Terminal() {
		return report(out, *grade, outcome{status: grade.Status, errs: grade.Errors})
	}

	done := make(chan outcome, 1)
	finish := func(o outcome) {
		select {
		case done <- o:
		default:
		}
	}

	fetcher := notFoundFetcher{
		Fetcher:    e.client,
		onNotFound: func(string) { finish(outcome{}) },
	}
	p := poller.New(fetcher, poller.Options{
		Interval: pollInterval(e.cfg, opts.PollEvery),
		Notifier: notify.NewLog(log),
		Logger:   logrus.NewEntry(e.log),
		OnStatusChange: func(_ string, status gradeapi.Status) {
			fmt.Fprintf(out, "Status: %s\n", status.Label())
		},
		OnComplete: func(string) { finish(outcome{status: gradeapi.StatusCompleted}) },
		OnError: func(_ string, errs []string) {
			finish(outcome{status: gradeapi.StatusFailed, errs: errs})
		},
	})
	defer p.Close()
	p.Sync([]poller.Item{poller.ItemFromGrade(*grade)})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case o := <-done:
		return report(out, *grade, o)
	}
}

func report(out io.Writer, grade gradeapi.Grade, o outcome) error {
	name := displayGradeName(grade)
	switch o.status {
	case gradeapi.StatusCompleted:
		fmt.Fprintf(out, "Grade gerada com sucesso: %s\n", name)
		return nil
	case gradeapi.StatusFailed:
		msg := gradeapi.GenerationStatus{Status: o.status, Errors: o.errs}.FirstError()
		if msg == "" {
			msg = "Não foi possível gerar a grade horária. Tente novamente."
		}
		fmt.Fprintf(out, "Erro ao gerar a grade %q: %s\n", name, msg)
		return fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
	default:
		return fmt.Errorf("%w: %s", ErrGradeVanished, grade.ID)
	}
}

func displayGradeName(g gradeapi.Grade) string {
	if name := strings.TrimSpace(g.Name); name != "" {
		return name
	}
	return g.ID
}
