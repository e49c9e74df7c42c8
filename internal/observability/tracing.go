package observability

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Span times one unit of work inside a request. A finished span is written
// to the log by End; the IDs also reach every record logged with its context.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	Start     time.Time
	Duration  time.Duration
	Err       error

	attrs []slog.Attr
	ended bool
}

type spanContextKey struct{}

// StartSpan opens a span under the one already in ctx, if any.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    newID(),
		Operation: operation,
		Start:     time.Now(),
	}
	if parent := GetSpan(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		span.TraceID = newID()
	}
	return context.WithValue(ctx, spanContextKey{}, span), span
}

func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}

// Set attaches an attribute that is logged with the finished span.
func (s *Span) Set(key string, value any) {
	s.attrs = append(s.attrs, slog.Any(key, value))
}

func (s *Span) Fail(err error) {
	s.Err = err
}

func (s *Span) Status() string {
	if s.Err != nil {
		return "error"
	}
	return "ok"
}

// End stamps the duration and logs the span at debug level. Only the first
// call has any effect. ctx should be the one returned by StartSpan.
func (s *Span) End(ctx context.Context, logger *slog.Logger) {
	if s.ended {
		return
	}
	s.ended = true
	s.Duration = time.Since(s.Start)

	if logger != nil {
		logger.LogAttrs(ctx, slog.LevelDebug, "span finished", slog.Any("span", s))
	}
}

func (s *Span) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(s.attrs)+5)
	attrs = append(attrs,
		slog.String("operation", s.Operation),
		slog.String("status", s.Status()),
		slog.Duration("duration", s.Duration),
	)
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}
	if s.Err != nil {
		attrs = append(attrs, slog.String("error", s.Err.Error()))
	}
	attrs = append(attrs, s.attrs...)
	return slog.GroupValue(attrs...)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
