// Package messaging reports internal failures to operators.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Incident describes one request that ended in an internal error
type Incident struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Operation  string    `json:"operation"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	RequestID  string    `json:"request_id,omitempty"`
	Error      string    `json:"error"`
}

// NewIncident stamps an incident with a fresh id and the current time
func NewIncident(operation, method, path, requestID string, err error) Incident {
	return Incident{
		ID:         uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Operation:  operation,
		Method:     method,
		Path:       path,
		RequestID:  requestID,
		Error:      err.Error(),
	}
}

func (i Incident) encode() ([]byte, error) {
	return json.Marshal(i)
}

// Reporter delivers incidents. Reporting is best effort and never fails the
// request that produced the incident.
type Reporter interface {
	Report(ctx context.Context, incident Incident)
	Close() error
}

// LogReporter only writes incidents to the log
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, incident Incident) {
	r.logger.ErrorContext(ctx, "Incident",
		slog.String("incident_id", incident.ID),
		slog.String("operation", incident.Operation),
		slog.String("http.request.method", incident.Method),
		slog.String("url.path", incident.Path),
		slog.String("request_id", incident.RequestID),
		slog.String("error", incident.Error),
	)
}

func (r *LogReporter) Close() error { return nil }
