// Package logging implements the runtime's logger: a kind/sender-aware
// facility that serialises every appender write through an internal queue
// and worker goroutine, so a log call never blocks its caller beyond the
// cost of acquiring a mutex. It sits on top of log/slog the way the teacher
// wires slog.NewJSONHandler/slog.SetDefault in its test drivers, and adds
// the XsmpLogger.properties bootstrap and pattern-layout conversion spec.md
// §6 describes.
package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Kind mirrors the XSMP-SDK's LogMessageKind: an ascending severity scale,
// registered in the type system as the LogMessageKind integer alias.
type Kind int32

const (
	Trace Kind = iota
	Debug
	Information
	Warning
	Error
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Trace:
		return "Trace"
	case Debug:
		return "Debug"
	case Information:
		return "Information"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

func (k Kind) level() slog.Level {
	switch k {
	case Trace:
		return slog.Level(-8)
	case Debug:
		return slog.LevelDebug
	case Information:
		return slog.LevelInfo
	case Warning:
		return slog.LevelWarn
	case Error, Fatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TimeSource supplies the simulation/mission/epoch/zulu readings a pattern
// layout's %S/%E/%M/%d tokens need. *timekeeper.TimeKeeper satisfies this
// without either package importing the other.
type TimeSource interface {
	SimulationTime() time.Duration
	MissionTime() time.Duration
	EpochTime() time.Duration
	ZuluTime() time.Time
}

// Record is one log entry handed to every attached appender.
type Record struct {
	Kind    Kind
	Sender  string
	Message string
	Time    time.Time
}

// Appender consumes Records, e.g. writing them to a console or file.
type Appender interface {
	Append(Record)
}

// Logger serialises writes to its appenders through a single worker
// goroutine fed by a buffered channel, so Log() itself only ever blocks on
// a short mutex-protected enqueue.
type Logger struct {
	mu        sync.Mutex
	appenders []Appender
	queue     chan Record
	done      chan struct{}
	times     TimeSource
}

// New constructs a Logger with no appenders; Log calls are accepted and
// discarded until appenders are attached with Attach. times may be nil, in
// which case pattern layouts render zero durations for %S/%E/%M and the
// wall clock for %d.
func New(times TimeSource) *Logger {
	l := &Logger{
		queue: make(chan Record, 256),
		done:  make(chan struct{}),
		times: times,
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	for {
		select {
		case rec := <-l.queue:
			l.mu.Lock()
			appenders := append([]Appender(nil), l.appenders...)
			l.mu.Unlock()
			for _, a := range appenders {
				a.Append(rec)
			}
		case <-l.done:
			return
		}
	}
}

// Attach registers an appender. Appenders added after Log calls are queued
// only see subsequent records.
func (l *Logger) Attach(a Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appenders = append(l.appenders, a)
}

// Close stops the worker goroutine. Records already queued are dropped.
func (l *Logger) Close() { close(l.done) }

// Log enqueues a record for asynchronous delivery to every appender. It
// never blocks beyond the queue's buffer: once the buffer is full it drops
// the record rather than stall the caller, preserving the non-blocking
// guarantee spec.md §5 states for the logger.
func (l *Logger) Log(kind Kind, sender, message string) {
	rec := Record{Kind: kind, Sender: sender, Message: message, Time: time.Now().UTC()}
	select {
	case l.queue <- rec:
	default:
	}
}

func (l *Logger) Trace(sender, msg string)  { l.Log(Trace, sender, msg) }
func (l *Logger) Debugf(sender, msg string) { l.Log(Debug, sender, msg) }
func (l *Logger) Info(sender, msg string)   { l.Log(Information, sender, msg) }
func (l *Logger) Warn(sender, msg string)   { l.Log(Warning, sender, msg) }
func (l *Logger) Errorf(sender, msg string) { l.Log(Error, sender, msg) }
func (l *Logger) Fatalf(sender, msg string) { l.Log(Fatal, sender, msg) }

// SlogHandler adapts the Logger so it can also serve as a log/slog.Handler,
// for components (like Scheduler and Simulator) that already hold a
// *slog.Logger and expect slog's Attr-based call sites to keep working.
func (l *Logger) SlogHandler() slog.Handler { return &slogAdapter{logger: l} }

type slogAdapter struct{ logger *Logger }

func (h *slogAdapter) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *slogAdapter) Handle(_ context.Context, r slog.Record) error {
	sender := "<unknown>"
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "sender" {
			sender = a.Value.String()
			return false
		}
		return true
	})
	h.logger.Log(kindFromSlogLevel(r.Level), sender, r.Message)
	return nil
}

func (h *slogAdapter) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *slogAdapter) WithGroup(_ string) slog.Handler      { return h }

func kindFromSlogLevel(l slog.Level) Kind {
	switch {
	case l < slog.LevelDebug:
		return Trace
	case l < slog.LevelInfo:
		return Debug
	case l < slog.LevelWarn:
		return Information
	case l < slog.LevelError:
		return Warning
	default:
		return Error
	}
}
