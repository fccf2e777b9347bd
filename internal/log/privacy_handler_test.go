package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewPrivacyHandler(inner))
}

func TestPrivacyHandlerMasksIdentifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		want bool // want masked
	}{
		{name: "patient key", key: "patient", want: true},
		{name: "patient_id key", key: "patient_id", want: true},
		{name: "spanish key", key: "paciente", want: true},
		{name: "uppercase key", key: "Patient", want: true},
		{name: "ordinary key", key: "variable", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newTestLogger(&buf)
			logger.Warn("skipping", tt.key, "PX-001")

			out := buf.String()
			masked := strings.Contains(out, MaskValue)
			if masked != tt.want {
				t.Errorf("masked = %v, want %v (output: %s)", masked, tt.want, out)
			}
			if tt.want && strings.Contains(out, "PX-001") {
				t.Errorf("identifier leaked into output: %s", out)
			}
		})
	}
}

func TestPrivacyHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf).With("patient", "PX-007")
	logger.Info("processing variable")

	out := buf.String()
	if strings.Contains(out, "PX-007") {
		t.Errorf("identifier leaked through With: %s", out)
	}
	if !strings.Contains(out, MaskValue) {
		t.Errorf("expected masked attribute in output: %s", out)
	}
}

func TestPrivacyHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.Info("grouped", slog.Group("row", slog.String("patient", "PX-9"), slog.String("round", "2")))

	out := buf.String()
	if strings.Contains(out, "PX-9") {
		t.Errorf("identifier leaked inside group: %s", out)
	}
	if !strings.Contains(out, "round=2") {
		t.Errorf("non-identifying group attribute lost: %s", out)
	}
}

func TestPrivacyHandlerEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewPrivacyHandler(inner)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = true, want false at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false, want true")
	}
}
