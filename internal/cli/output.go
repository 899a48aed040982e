// Package cli provides terminal output helpers for the storefront commands.
package cli

import (
	"fmt"
	"io"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// Output writes user-facing messages, colored when the destination is a
// terminal and plain when it is a pipe or file.
type Output struct {
	out      io.Writer
	err      io.Writer
	colorize bool
}

// New returns an Output bound to stdout/stderr.
func New() *Output {
	return &Output{out: os.Stdout, err: os.Stderr, colorize: isTerminal(os.Stdout)}
}

// NewWithWriters returns an Output over explicit writers. Tests pass
// buffers and choose colorization.
func NewWithWriters(out, errOut io.Writer, colorize bool) *Output {
	return &Output{out: out, err: errOut, colorize: colorize}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (o *Output) paint(color, s string) string {
	if !o.colorize {
		return s
	}
	return color + s + colorReset
}

// Successf prints a green status line.
func (o *Output) Successf(format string, args ...interface{}) {
	fmt.Fprintln(o.out, o.paint(colorGreen, fmt.Sprintf(format, args...)))
}

// Warnf prints a yellow status line.
func (o *Output) Warnf(format string, args ...interface{}) {
	fmt.Fprintln(o.out, o.paint(colorYellow, fmt.Sprintf(format, args...)))
}

// Errorf prints a red line to the error writer.
func (o *Output) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(o.err, o.paint(colorRed, fmt.Sprintf(format, args...)))
}

// Boldf prints an emphasized line, for headings.
func (o *Output) Boldf(format string, args ...interface{}) {
	fmt.Fprintln(o.out, o.paint(colorBold, fmt.Sprintf(format, args...)))
}
