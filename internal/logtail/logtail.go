// Package logtail reads the tail of the gradewatch log file.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Query selects which lines Read returns.
type Query struct {
	MaxLines int    // <= 0 returns every matching line
	GradeID  string // only lines mentioning this grade id
}

// Read returns the last matching lines of the file at path, oldest first.
// A missing file yields no lines and no error.
func Read(path string, q Query) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	match := matcher(q.GradeID)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if q.MaxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			if line := scanner.Text(); match(line) {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, q.MaxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !match(line) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % q.MaxLines
		if count < q.MaxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == q.MaxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%q.MaxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// matcher matches both text ("grade_id=g1") and JSON ("grade_id":"g1") output.
func matcher(gradeID string) func(string) bool {
	gradeID = strings.TrimSpace(gradeID)
	if gradeID == "" {
		return func(string) bool { return true }
	}
	text := "grade_id=" + gradeID
	quoted := `grade_id="` + gradeID + `"`
	jsonForm := `"grade_id":"` + gradeID + `"`
	return func(line string) bool {
		return containsField(line, text) || strings.Contains(line, quoted) || strings.Contains(line, jsonForm)
	}
}

// containsField avoids matching g1 inside g10.
func containsField(line, field string) bool {
	for start := 0; ; {
		i := strings.Index(line[start:], field)
		if i < 0 {
			return false
		}
		end := start + i + len(field)
		if end == len(line) || line[end] == ' ' {
			return true
		}
		start = end
	}
}
