// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Out returns the stdout writer.
func (w *Writer) Out() io.Writer { return w.out }

// Err returns the stderr writer.
func (w *Writer) Err() io.Writer { return w.err }

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println(w.paint(green, format), args...)
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%swarning:%s %s", yellow, reset, msg)
	} else {
		w.Errorln("warning: %s", msg)
	}
}

// ErrorPrefix prints an error message with the specoracle prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%sspecoracle:%s %s", red, reset, msg)
	} else {
		w.Errorln("specoracle: %s", msg)
	}
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.paint(bold, "=== "+title+" ==="))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple table.
func (w *Writer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, 0, len(widths))
		for i, cell := range cells {
			if i < len(widths) {
				parts = append(parts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	w.Println("%s", line(headers))
	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	w.Println("%s", line(sep))
	for _, row := range rows {
		w.Println("%s", line(row))
	}
}

// CasePassed prints a passing case verdict.
func (w *Writer) CasePassed(id, detail string) {
	if w.quiet {
		return
	}
	if detail == "" {
		w.Println("%s %s", w.paint(green, "PASS"), id)
		return
	}
	w.Println("%s %s %s", w.paint(green, "PASS"), id, w.paint(dim, detail))
}

// CaseFailed prints a failing case verdict followed by its diagnostics.
func (w *Writer) CaseFailed(id string, diagnostics []string) {
	w.Println("%s %s", w.paint(red, "FAIL"), id)
	for _, d := range diagnostics {
		for _, line := range strings.Split(d, "\n") {
			w.Println("    %s", line)
		}
	}
}

// CheckSummary prints the totals of a check run. In quiet mode only a
// failing total is printed.
func (w *Writer) CheckSummary(total, failed int) {
	if failed > 0 {
		w.Println("%s", w.paint(red, fmt.Sprintf("%d of %d checked cases failed", failed, total)))
		return
	}
	if !w.quiet {
		w.Println("%s", w.paint(green, fmt.Sprintf("%d of %d checked cases passed", total, total)))
	}
}

// paint wraps s in an ANSI color when color output is enabled.
func (w *Writer) paint(color, s string) string {
	if !w.color || s == "" {
		return s
	}
	return color + s + reset
}

// isTerminal reports whether stdout is a terminal. NO_COLOR disables color.
func isTerminal() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
)
