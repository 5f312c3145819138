// Package gradeapi provides an HTTP client for the Grade Horária backend API.
//
// # Overview
//
// The backend owns persistence, validation and the timetable generation
// algorithm. This package only mirrors the handful of endpoints gradewatch
// needs:
//
//   - GET  /api/escolas/{escolaId}/grades: grades of one school
//   - GET  /api/escolas/{escolaId}/grades/{gradeId}/status: generation status
//   - POST /api/escolas/{escolaId}/grades/gerar: start automatic generation
//
// # Errors
//
// A 404 response is reported as an error wrapping ErrNotFound so callers can
// use errors.Is. Any other 4xx/5xx response yields an *APIError carrying the
// status code and a truncated response body. Network, rate limiter and
// decode failures are wrapped with fmt.Errorf.
//
// # Request Handling
//
// Every request:
//   - waits on a token bucket limiter (5 req/s by default)
//   - sets Accept, User-Agent and a fresh X-Request-ID
//   - sends Authorization: Bearer when a token is configured
//   - inherits cancellation from the caller's context
//
// The client performs no retries and no caching; the poller decides the
// refresh cadence and treats any non-404 failure as transient.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package gradeapi
