package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves one school with scripted generation statuses.
type fakeBackend struct {
	mu       sync.Mutex
	statuses []string // replayed by the status endpoint; the last repeats
	errs     []string
	missing  bool
	requests []map[string]any
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/escolas/e1/grades/gerar", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.requests = append(b.requests, body)
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "g1", "nome": body["nome"], "status": "pendente"})
	})
	mux.HandleFunc("GET /api/escolas/e1/grades/g1/status", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.missing {
			http.NotFound(w, r)
			return
		}
		status := b.statuses[0]
		if len(b.statuses) > 1 {
			b.statuses = b.statuses[1:]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "erros": b.errs})
	})
	mux.HandleFunc("GET /api/escolas/e1/grades", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"g1","nome":"Manhã 2025","status":"concluida","updatedAt":"2025-03-01T10:00:00Z"}]}`))
	})
	return mux
}

func writeConfig(t *testing.T, apiURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	logFile := filepath.Join(dir, "gradewatch.log")
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("api_url = %q\nescola_id = \"e1\"\nlog_file = %q\nlog_level = \"debug\"\n", apiURL, logFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, logFile
}

func TestGenerateWaitsForCompletion(t *testing.T) {
	backend := &fakeBackend{statuses: []string{"processando", "concluida"}}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	cfgPath, logFile := writeConfig(t, srv.URL)

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := Generate(ctx, GenerateOptions{
		ConfigPath: cfgPath,
		Name:       "Manhã 2025",
		TurmaIDs:   []string{"t1", "t2"},
		PollEvery:  10 * time.Millisecond,
		Out:        &out,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Geração solicitada: Manhã 2025 (g1)")
	assert.Contains(t, out.String(), "Status: Processando")
	assert.Contains(t, out.String(), "Grade gerada com sucesso: Manhã 2025")

	require.Len(t, backend.requests, 1)
	assert.Equal(t, []any{"t1", "t2"}, backend.requests[0]["turmaIds"])

	var logs bytes.Buffer
	require.NoError(t, Logs(LogsOptions{ConfigPath: cfgPath, GradeID: "g1", Out: &logs}))
	assert.Contains(t, logs.String(), "generation requested")
	_, statErr := os.Stat(logFile)
	assert.NoError(t, statErr)
}

func TestGenerateReportsFailure(t *testing.T) {
	backend := &fakeBackend{statuses: []string{"erro"}, errs: []string{"", "Turma sem professor"}}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	cfgPath, _ := writeConfig(t, srv.URL)

	var out bytes.Buffer
	err := Generate(context.Background(), GenerateOptions{
		ConfigPath: cfgPath,
		Name:       "Tarde",
		PollEvery:  10 * time.Millisecond,
		Out:        &out,
	})
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, out.String(), `Erro ao gerar a grade "Tarde": Turma sem professor`)
}

func TestGenerateStopsWhenGradeVanishes(t *testing.T) {
	backend := &fakeBackend{missing: true}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	cfgPath, _ := writeConfig(t, srv.URL)

	err := Generate(context.Background(), GenerateOptions{
		ConfigPath: cfgPath,
		Name:       "Noite",
		PollEvery:  10 * time.Millisecond,
		Out:        &bytes.Buffer{},
	})
	require.ErrorIs(t, err, ErrGradeVanished)
}

func TestGenerateRequiresName(t *testing.T) {
	err := Generate(context.Background(), GenerateOptions{Name: "  "})
	require.Error(t, err)
}

func TestStatusListsGrades(t *testing.T) {
	backend := &fakeBackend{statuses: []string{"processando"}, errs: []string{}}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()
	cfgPath, _ := writeConfig(t, srv.URL)

	var out bytes.Buffer
	require.NoError(t, Status(context.Background(), StatusOptions{ConfigPath: cfgPath, Out: &out}))
	assert.Contains(t, out.String(), "Manhã 2025")
	assert.Contains(t, out.String(), "Concluída")

	out.Reset()
	require.NoError(t, Status(context.Background(), StatusOptions{ConfigPath: cfgPath, GradeID: "g1", Out: &out}))
	assert.Equal(t, "g1: Processando\n", out.String())
}

func TestBootstrapRequiresEscola(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_url = \"http://127.0.0.1:1\"\n"), 0o644))
	_, err := bootstrap(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escola_id")
}
