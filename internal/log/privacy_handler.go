package log

import (
	"context"
	"log/slog"
	"strings"
)

// identifierKeys contains attribute keys whose values identify a person.
// Matching is case-insensitive on the final segment of dotted keys.
var identifierKeys = map[string]bool{
	"patient":    true,
	"patient_id": true,
	"patientid":  true,
	"paciente":   true,
	"subject":    true,
	"subject_id": true,
	"dob":        true,
	"birthdate":  true,
	"nhc":        true, // número de historia clínica
}

// MaskValue replaces masked attribute values.
const MaskValue = "***MASKED***"

// PrivacyHandler wraps an slog.Handler and masks attribute values that
// identify patients before delegating.
//
// Design decision: We wrap a handler rather than filter at call sites
// because the engine legitimately needs patient identifiers in its warning
// paths (duplicate observations, incomplete cases); centralizing the masking
// means no call site can forget it.
type PrivacyHandler struct {
	// handler is the underlying slog handler that receives masked records.
	handler slog.Handler
}

// NewPrivacyHandler creates a PrivacyHandler wrapping the given handler.
// If handler is nil, the default handler is wrapped.
func NewPrivacyHandler(handler slog.Handler) *PrivacyHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &PrivacyHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrivacyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks identifying attributes and passes the record on.
func (h *PrivacyHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new PrivacyHandler whose underlying handler carries
// the given (masked) attributes.
func (h *PrivacyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		maskedAttrs[i] = maskAttr(attr)
	}
	return &PrivacyHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a new PrivacyHandler with the given group name.
func (h *PrivacyHandler) WithGroup(name string) slog.Handler {
	return &PrivacyHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks an attribute value when its key identifies a person.
// Group attributes are masked recursively.
func maskAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, a := range group {
			masked[i] = maskAttr(a)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(masked...)}
	}
	if isIdentifierKey(attr.Key) {
		return slog.String(attr.Key, MaskValue)
	}
	return attr
}

// isIdentifierKey reports whether a key names a patient identifier.
func isIdentifierKey(key string) bool {
	k := strings.ToLower(key)
	if i := strings.LastIndex(k, "."); i >= 0 {
		k = k[i+1:]
	}
	return identifierKeys[k]
}
