// Package logging writes single-line diagnostic messages of the form
// "<tag>: <message>".
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	gosync "sync"

	"github.com/fatih/color"
)

// Logger prefixes every line with a fixed tag. It is safe for concurrent use.
type Logger struct {
	mu    gosync.Mutex
	w     io.Writer
	tag   string
	color *color.Color
}

// New creates a logger writing plain lines to w.
func New(w io.Writer, tag string) *Logger {
	return &Logger{w: w, tag: tag}
}

// NewStdout creates a logger on standard output with a colored tag.
func NewStdout(tag string) *Logger {
	return New(os.Stdout, tag).WithColor()
}

// WithColor colors the tag. fatih/color disables coloring on its own when
// stdout is not a terminal or NO_COLOR is set.
func (l *Logger) WithColor() *Logger {
	l.color = color.New(color.FgCyan, color.Bold)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "")
}

// Tag returns the prefix used for every line.
func (l *Logger) Tag() string {
	return l.tag
}

// Printf writes a single tagged line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.w == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	tag := l.tag
	if l.color != nil {
		tag = l.color.Sprint(tag)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s: %s\n", tag, line)
}
