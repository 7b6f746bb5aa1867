// Package scribe defines spade-wide logging types and functions.
//
// Logging happens via slog. Attributes such as the session ID travel
// on the context so that every log line emitted while serving a tool
// call carries them, no matter how deep the call stack.
package scribe

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

type attrsKey struct{}

// Redact replaces the values of sensitive-looking KEY=VALUE pairs in
// an environment listing. Commands and environments get logged; keys
// and tokens should not.
func Redact(environ []string) []string {
	ret := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if ok && sensitiveName(name) {
			ret = append(ret, name+"=[REDACTED]")
		} else {
			ret = append(ret, kv)
		}
	}
	return ret
}

func sensitiveName(name string) bool {
	upper := strings.ToUpper(name)
	for _, suffix := range []string{"_KEY", "_TOKEN", "_SECRET", "_PASSWORD"} {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// ContextWithAttr returns a context whose log records will carry the
// given attributes when the default handler is wrapped with AttrsWrap.
func ContextWithAttr(ctx context.Context, add ...slog.Attr) context.Context {
	attrs := slices.Clone(Attrs(ctx))
	attrs = append(attrs, add...)
	return context.WithValue(ctx, attrsKey{}, attrs)
}

// Attrs returns the attributes carried by ctx.
func Attrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// AttrsWrap wraps h so that records are augmented with the context's
// attributes.
func AttrsWrap(h slog.Handler) slog.Handler {
	return &augmentHandler{Handler: h}
}

type augmentHandler struct {
	slog.Handler
}

func (h *augmentHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(Attrs(ctx)...)
	return h.Handler.Handle(ctx, r)
}
