// Package notify is the user-facing channel for freeze progress and
// failures.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level classifies a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notice is one short human-readable message.
type Notice struct {
	Level   Level
	Message string
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Infof, Successf and Errorf format and send a notice.
func Infof(n Notifier, format string, args ...any) {
	n.Notify(Notice{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

func Successf(n Notifier, format string, args ...any) {
	n.Notify(Notice{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)})
}

func Errorf(n Notifier, format string, args ...any) {
	n.Notify(Notice{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

// Log writes notices to a structured logger.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(n Notice) {
	if n.Level == LevelError {
		l.log.Error(n.Message)
		return
	}
	l.log.Info(n.Message, "notice", n.Level.String())
}

// Console prints notices to a terminal, colored when the output is one.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	info    *color.Color
	success *color.Color
	err     *color.Color
}

// NewConsole writes to f, enabling colors only when f is a terminal.
func NewConsole(f *os.File) *Console {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return newConsole(f, tty)
}

func newConsole(w io.Writer, colored bool) *Console {
	c := &Console{
		w:       w,
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		err:     color.New(color.FgRed, color.Bold),
	}
	for _, col := range []*color.Color{c.info, c.success, c.err} {
		if colored {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col := c.info
	switch n.Level {
	case LevelSuccess:
		col = c.success
	case LevelError:
		col = c.err
	}
	col.Fprintln(c.w, n.Message)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notice) {}
