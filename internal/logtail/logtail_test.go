package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, Query{MaxLines: tt.maxLines})
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_FiltersByGradeID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "gradewatch.log")
	lines := []string{
		`time="2024-03-01T10:00:00Z" level=info msg="generation status changed" grade_id=g1 to=concluida`,
		`time="2024-03-01T10:00:01Z" level=warn msg="status poll failed; will retry" grade_id=g10`,
		`{"grade_id":"g1","level":"info","msg":"Grade gerada com sucesso"}`,
		`time="2024-03-01T10:00:02Z" level=debug msg="status pass finished" checked=2`,
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(logPath, Query{GradeID: "g1"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{lines[0], lines[2]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Read() = %v, want %v", got, want)
	}

	got, err = Read(logPath, Query{GradeID: "g1", MaxLines: 1})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{lines[2]}) {
		t.Fatalf("Read() = %v, want last g1 line", got)
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), Query{MaxLines: 5})
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}
