package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiCodeReset     = "\033[0m"
	ansiCodeRed       = "\033[31m"
	ansiCodeGreen     = "\033[32m"
	ansiCodeYellow    = "\033[33m"
	ansiCodeCyan      = "\033[36m"
	ansiCodeGray      = "\033[90m"
	ansiCodeUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var ansiCodeMap = map[slog.Level]string{
	slog.LevelDebug: ansiCodeCyan,
	slog.LevelInfo:  ansiCodeGreen,
	slog.LevelWarn:  ansiCodeYellow,
	slog.LevelError: ansiCodeRed,
}

// loggerNameKey is the attribute GetLogger stores the logger name under.
const loggerNameKey = "logger"

// ConsoleHandler implements slog.Handler with colored, human-readable output
// suitable for development environments.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps dotted logger names to minimum log levels.
	// The longest matching prefix wins.
	PkgLevels map[string]slog.Level
	// NoColor disables ANSI escape codes
	NoColor bool

	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	if minLevel, ok := h.pkgLevel(loggerName(attrs)); ok && r.Level < minLevel {
		return nil
	}

	var msg strings.Builder

	msg.WriteString(h.color(ansiCodeGray, r.Time.Format("15:04:05.000000")))
	msg.WriteString(" " + h.color(ansiCodeMap[r.Level], "["+r.Level.String()+"]"))
	msg.WriteString(" " + r.Message)

	if len(attrs) > 0 {
		var prefix string
		if len(h.groups) > 0 {
			prefix = strings.Join(h.groups, ".") + "."
		}

		msg.WriteString(" " + h.color(ansiCodeGray, "|"))
		h.renderAttrs(&msg, prefix, attrs)
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := strings.Split(frame.Function, string(os.PathSeparator))

		msg.WriteString("\n-> " + h.color(ansiCodeGray, fn[len(fn)-1]+"()"))
		msg.WriteString(" in " + h.color(ansiCodeUnderline, frame.File+":"+strconv.Itoa(frame.Line)))
	}

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}

	if _, err := fmt.Fprintln(h.Output, msg.String()); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// pkgLevel finds the level override for the longest matching prefix of name.
// The empty key acts as a catch-all.
func (h *ConsoleHandler) pkgLevel(name string) (slog.Level, bool) {
	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0; i-- {
		if level, ok := h.PkgLevels[strings.Join(parts[:i], ".")]; ok {
			return level, true
		}
	}

	return 0, false
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == loggerNameKey {
			return attr.Value.String()
		}
	}

	return ""
}

func (h *ConsoleHandler) color(code, s string) string {
	if h.NoColor {
		return s
	}

	return code + s + ansiCodeReset
}

func (h *ConsoleHandler) renderAttrs(out *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.renderAttrs(out, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		out.WriteString(" " + prefix + attr.Key + "=" + h.color(ansiCodeGray, attr.Value.String()))
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)

	return &clone
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}
