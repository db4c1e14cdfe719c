package zerologger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// Config captures the options exposed by the zerolog adapter.
type Config struct {
	Level  string
	Format string
	Writer io.Writer
	// TimeFunc overrides the timestamp source. Nil uses time.Now.
	TimeFunc func() time.Time
	// NoTimestamp drops the time field, mostly useful in tests.
	NoTimestamp bool
}

// Provider hands out zerolog backed loggers.
type Provider struct {
	root zerolog.Logger
}

// NewProvider builds a provider writing JSON lines (format "json") or human
// readable lines (format "console") to the configured writer.
func NewProvider(cfg Config) (*Provider, error) {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
	case "console", "pretty":
		console := zerolog.ConsoleWriter{Out: writer, NoColor: true, TimeFormat: time.RFC3339}
		writer = console
	default:
		return nil, fmt.Errorf("logging: unsupported zerolog format %q", cfg.Format)
	}

	level := zerolog.DebugLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("logging: unsupported zerolog level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	root := zerolog.New(writer).Level(level)
	if !cfg.NoTimestamp {
		clock := cfg.TimeFunc
		if clock == nil {
			clock = time.Now
		}
		root = root.Hook(timestampHook{clock: clock})
	}
	return &Provider{root: root}, nil
}

// GetLogger satisfies interfaces.LoggerProvider.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	inner := p.root
	if name = strings.TrimSpace(name); name != "" {
		inner = inner.With().Str("logger", name).Logger()
	}
	return &adapter{inner: inner}
}

type timestampHook struct {
	clock func() time.Time
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Time(zerolog.TimestampFieldName, h.clock().UTC())
}

type adapter struct {
	inner zerolog.Logger
	ctx   context.Context
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.emit(zerolog.TraceLevel, msg, args) }
func (l *adapter) Debug(msg string, args ...any) { l.emit(zerolog.DebugLevel, msg, args) }
func (l *adapter) Info(msg string, args ...any)  { l.emit(zerolog.InfoLevel, msg, args) }
func (l *adapter) Warn(msg string, args ...any)  { l.emit(zerolog.WarnLevel, msg, args) }
func (l *adapter) Error(msg string, args ...any) { l.emit(zerolog.ErrorLevel, msg, args) }

// Fatal records at fatal level without exiting the process.
func (l *adapter) Fatal(msg string, args ...any) { l.emit(zerolog.FatalLevel, msg, args) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return &adapter{inner: l.inner.With().Fields(fields).Logger(), ctx: l.ctx}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return &adapter{inner: l.inner, ctx: ctx}
}

func (l *adapter) emit(level zerolog.Level, msg string, args []any) {
	event := l.inner.WithLevel(level)
	if event == nil {
		return
	}
	if fields := logging.ContextFields(l.ctx); len(fields) > 0 {
		event = event.Fields(fields)
	}
	if fields := pairs(args); len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(msg)
}

// pairs folds key/value args into a map. A dangling value or a non string key
// is kept under a positional name.
func pairs(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i == len(args)-1 {
			fields[fmt.Sprintf("field_%d", i/2)] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = fmt.Sprintf("field_%d", i/2)
		}
		fields[key] = args[i+1]
	}
	return fields
}
