package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/poller"
	"github.com/gradehoraria/gradewatch/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 10, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff || got <= 0 {
			t.Errorf("calculateBackoff(%d, %v) = %v, outside (0, %v]", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeLister struct {
	grades []gradeapi.Grade
	err    error
}

func (f fakeLister) ListGrades(context.Context, string) ([]gradeapi.Grade, error) {
	return f.grades, f.err
}

type fakeSyncer struct {
	calls [][]poller.Item
}

func (f *fakeSyncer) Sync(items []poller.Item) { f.calls = append(f.calls, items) }

func TestRefresherSyncsListedGrades(t *testing.T) {
	store := &state.Store{}
	syncer := &fakeSyncer{}
	r := &Refresher{
		Store:    store,
		Tracker:  syncer,
		EscolaID: "e1",
		Lister: fakeLister{grades: []gradeapi.Grade{
			{ID: "g1", EscolaID: "e1", Name: "Manhã", Status: gradeapi.StatusProcessing},
			{ID: "g2", EscolaID: "e1", Name: "Tarde", Status: gradeapi.StatusCompleted},
		}},
	}

	require.NoError(t, r.Refresh(context.Background()))

	snap := store.Snapshot()
	assert.True(t, snap.HasGrades)
	assert.Len(t, snap.Grades, 2)
	require.Len(t, syncer.calls, 1)
	assert.Equal(t, []poller.Item{
		{ID: "g1", EscolaID: "e1", Name: "Manhã", Status: gradeapi.StatusProcessing},
		{ID: "g2", EscolaID: "e1", Name: "Tarde", Status: gradeapi.StatusCompleted},
	}, syncer.calls[0])
}

func TestRefresherFailureKeepsPreviousList(t *testing.T) {
	store := &state.Store{}
	store.Update([]gradeapi.Grade{{ID: "g1"}}, nil)
	syncer := &fakeSyncer{}
	boom := errors.New("connection refused")
	r := &Refresher{Store: store, Tracker: syncer, EscolaID: "e1", Lister: fakeLister{err: boom}}

	err := r.Refresh(context.Background())
	require.ErrorIs(t, err, boom)

	snap := store.Snapshot()
	assert.Len(t, snap.Grades, 1)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
	assert.Empty(t, syncer.calls, "a failed refresh must not prune tracked items")
}

func TestRefresherRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Refresher{Store: &state.Store{}, EscolaID: "e1", Lister: fakeLister{}, Interval: time.Hour}

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return r.Store.Snapshot().HasGrades }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
