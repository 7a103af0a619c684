// Package filter streams lines through a compiled pattern and emits matches
// in input order.
package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
)

// ErrInvalidEncoding is the cause of a LineReadError for non UTF-8 input.
var ErrInvalidEncoding = errors.New("line is not valid UTF-8")

// Options controls how matched lines are written.
type Options struct {
	// LineNumbers prefixes each emitted line with its 1-based number and ':'.
	LineNumbers bool
	// Highlight wraps matched spans in terminal color codes.
	Highlight bool
}

// Stats summarizes a completed or aborted run.
type Stats struct {
	LinesRead    int
	LinesMatched int
}

// Filter applies one matcher to a line stream. A Filter runs at most once.
type Filter struct {
	matcher domain.Matcher
	opts    Options
	state   State
	stats   Stats
	match   *color.Color
	lineNo  *color.Color
}

// New creates a filter in the Idle state.
func New(matcher domain.Matcher, opts Options) *Filter {
	f := &Filter{
		matcher: matcher,
		opts:    opts,
		state:   StateIdle,
		match:   color.New(color.Bold, color.FgRed),
		lineNo:  color.New(color.FgGreen),
	}
	if opts.Highlight {
		f.match.EnableColor()
		f.lineNo.EnableColor()
	} else {
		f.match.DisableColor()
		f.lineNo.DisableColor()
	}
	return f
}

// State returns the current lifecycle state.
func (f *Filter) State() State {
	return f.state
}

// Stats returns counters for the lines processed so far.
func (f *Filter) Stats() Stats {
	return f.stats
}

// Run reads r line by line and writes matching lines to w. It returns nil at
// end of stream whether or not anything matched. The first read, match or write
// failure aborts the run; lines emitted before it have already been flushed.
func (f *Filter) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	if f.state != StateIdle {
		return fmt.Errorf("filter already ran (state %s)", f.state)
	}
	f.state = StateReading

	logger := observability.FromContext(ctx)
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return f.fail(out, err)
		}

		// Flush before a read that may block so live streams see matches promptly.
		if in.Buffered() == 0 {
			if err := out.Flush(); err != nil {
				return f.fail(out, &domain.OutputError{Line: f.stats.LinesRead, Err: err})
			}
		}

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return f.fail(out, &domain.LineReadError{Line: f.stats.LinesRead + 1, Err: err})
		}
		if line == "" && errors.Is(err, io.EOF) {
			break
		}
		atEOF := errors.Is(err, io.EOF)

		f.stats.LinesRead++
		line = trimLineEnding(line)

		if !utf8.ValidString(line) {
			return f.fail(out, &domain.LineReadError{Line: f.stats.LinesRead, Err: ErrInvalidEncoding})
		}

		matched, err := f.matcher.Match(line)
		if err != nil {
			return f.fail(out, &domain.MatchError{Line: f.stats.LinesRead, Err: err})
		}

		if matched {
			f.state = StateEmitting
			if err := f.emit(out, line); err != nil {
				return f.fail(out, &domain.OutputError{Line: f.stats.LinesRead, Err: err})
			}
			f.stats.LinesMatched++
			f.state = StateReading
		}

		if atEOF {
			break
		}
	}

	if err := out.Flush(); err != nil {
		return f.fail(out, &domain.OutputError{Line: f.stats.LinesRead, Err: err})
	}
	f.state = StateDone

	logger.Debug("input exhausted",
		observability.Int("lines_read", f.stats.LinesRead),
		observability.Int("lines_matched", f.stats.LinesMatched))

	return nil
}

func (f *Filter) emit(out *bufio.Writer, line string) error {
	var b strings.Builder

	if f.opts.LineNumbers {
		b.WriteString(f.lineNo.Sprint(strconv.Itoa(f.stats.LinesRead)))
		b.WriteByte(':')
	}

	if f.opts.Highlight {
		highlighted, err := f.highlight(line)
		if err != nil {
			return err
		}
		b.WriteString(highlighted)
	} else {
		b.WriteString(line)
	}
	b.WriteByte('\n')

	_, err := out.WriteString(b.String())
	return err
}

func (f *Filter) highlight(line string) (string, error) {
	spans, err := f.matcher.Spans(line)
	if err != nil {
		return "", err
	}
	if len(spans) == 0 {
		return line, nil
	}

	runes := []rune(line)
	var b strings.Builder
	pos := 0
	for _, span := range spans {
		if span.End <= span.Start {
			continue
		}
		b.WriteString(string(runes[pos:span.Start]))
		b.WriteString(f.match.Sprint(string(runes[span.Start:span.End])))
		pos = span.End
	}
	b.WriteString(string(runes[pos:]))

	return b.String(), nil
}

// fail moves to the terminal Failed state. Output already emitted is flushed
// so it is never silently lost; nothing further is written.
func (f *Filter) fail(out *bufio.Writer, err error) error {
	f.state = StateFailed
	_ = out.Flush()
	return err
}

func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
