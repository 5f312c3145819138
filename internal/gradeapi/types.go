package gradeapi

import (
	"strings"
	"time"
)

const backendTimestampLayout = "2006-01-02 15:04:05"

// Status mirrors the generation status values reported by the backend.
type Status string

const (
	StatusPending    Status = "pendente"
	StatusProcessing Status = "processando"
	StatusCompleted  Status = "concluida"
	StatusFailed     Status = "erro"
)

// ParseStatus normalizes a raw status string. Unknown values are returned
// as-is so callers can still display them.
func ParseStatus(raw string) Status {
	return Status(strings.ToLower(strings.TrimSpace(raw)))
}

// Active reports whether the job is still queued or running.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusProcessing
}

// Terminal reports whether the job finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Label returns a short human readable label.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusProcessing:
		return "Processando"
	case StatusCompleted:
		return "Concluída"
	case StatusFailed:
		return "Erro"
	case "":
		return "—"
	default:
		return string(s)
	}
}

// GenerationStatus mirrors the payload of the grade status endpoint.
type GenerationStatus struct {
	Status Status   `json:"status"`
	Errors []string `json:"erros"`
}

// FirstError returns the first non-blank error message, if any.
func (g GenerationStatus) FirstError() string {
	for _, msg := range g.Errors {
		if trimmed := strings.TrimSpace(msg); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// GradeListResponse mirrors the grade list endpoint.
type GradeListResponse struct {
	Items []Grade `json:"items"`
}

// Grade describes a timetable in transport-friendly form.
type Grade struct {
	ID        string   `json:"id"`
	EscolaID  string   `json:"escolaId"`
	Name      string   `json:"nome"`
	Status    Status   `json:"status"`
	TurmaIDs  []string `json:"turmaIds"`
	Errors    []string `json:"erros"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// GenerateRequest is the body for an automatic generation request.
type GenerateRequest struct {
	Name     string   `json:"nome"`
	TurmaIDs []string `json:"turmaIds,omitempty"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (g Grade) ParsedCreatedAt() time.Time {
	return parseTime(g.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (g Grade) ParsedUpdatedAt() time.Time {
	return parseTime(g.UpdatedAt)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
