package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestIncident_EncodeShape(t *testing.T) {
	inc := NewIncident("products.create", "POST", "/api/v1/example/products/", "req-1", errors.New("deadlock"))

	body, err := inc.encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"id", "occurred_at", "operation", "method", "path", "request_id", "error"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing %q in %s", k, body)
		}
	}
	if m["error"] != "deadlock" || m["operation"] != "products.create" {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestIncident_OmitsEmptyRequestID(t *testing.T) {
	body, _ := NewIncident("products.list", "GET", "/", "", errors.New("x")).encode()
	if strings.Contains(string(body), "request_id") {
		t.Fatalf("expected request_id to be omitted: %s", body)
	}
}

func TestLogReporter_WritesErrorLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

	inc := NewIncident("products.get", "GET", "/p/1/", "req-2", errors.New("timeout"))
	r.Report(context.Background(), inc)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if line["level"] != "ERROR" || line["incident_id"] != inc.ID || line["error"] != "timeout" {
		t.Fatalf("unexpected log line %v", line)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
