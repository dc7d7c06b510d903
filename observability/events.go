package observability

import (
	"log/slog"

	"stakehire/core/events"
	"stakehire/core/types"
)

// payloadCarrier is implemented by the module event wrappers, which expose the
// full typed payload in addition to the event type.
type payloadCarrier interface {
	Event() *types.Event
}

// LogEmitter forwards module events to a structured logger. It satisfies the
// events.Emitter contract so engines can be pointed at it directly.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter wraps the supplied logger; a nil logger falls back to the
// process default.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Emit implements events.Emitter.
func (l *LogEmitter) Emit(evt events.Event) {
	if l == nil || l.logger == nil || evt == nil {
		return
	}
	args := []any{slog.String("event", evt.EventType())}
	if carrier, ok := evt.(payloadCarrier); ok {
		if payload := carrier.Event(); payload != nil {
			for key, value := range payload.Attributes {
				args = append(args, slog.String(key, value))
			}
		}
	}
	l.logger.Info("module event", args...)
}

// FanoutEmitter broadcasts each event to every configured emitter.
type FanoutEmitter struct {
	emitters []events.Emitter
}

// NewFanoutEmitter bundles the supplied emitters; nil entries are skipped.
func NewFanoutEmitter(emitters ...events.Emitter) *FanoutEmitter {
	out := make([]events.Emitter, 0, len(emitters))
	for _, emitter := range emitters {
		if emitter != nil {
			out = append(out, emitter)
		}
	}
	return &FanoutEmitter{emitters: out}
}

// Emit implements events.Emitter.
func (f *FanoutEmitter) Emit(evt events.Event) {
	if f == nil {
		return
	}
	for _, emitter := range f.emitters {
		emitter.Emit(evt)
	}
}
