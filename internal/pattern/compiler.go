// Package pattern compiles translated text into matchers using regexp2.
// Compilation is the only place where model output becomes executable
// behavior; the text is never used for anything other than matching.
package pattern

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/observability"
)

// Compiler implements domain.PatternCompiler.
type Compiler struct {
	options      regexp2.RegexOptions
	dialect      Dialect
	matchTimeout time.Duration
}

// NewCompiler validates the configuration and returns a compiler.
func NewCompiler(cfg Config) (*Compiler, error) {
	var options regexp2.RegexOptions

	switch cfg.Dialect {
	case DialectRE2, "":
		options = regexp2.RE2
		cfg.Dialect = DialectRE2
	case DialectPerl:
		options = regexp2.None
	case DialectECMAScript:
		options = regexp2.ECMAScript
	default:
		return nil, fmt.Errorf("unsupported pattern dialect %q: expected re2, perl or ecmascript", cfg.Dialect)
	}

	if cfg.IgnoreCase {
		options |= regexp2.IgnoreCase
	}

	return &Compiler{
		options:      options,
		dialect:      cfg.Dialect,
		matchTimeout: cfg.MatchTimeout,
	}, nil
}

// Compile builds a Pattern from candidate text. Trailing line terminators
// appended by the model are dropped; spaces and tabs are part of the pattern.
// A failure is never retried or downgraded to literal matching.
func (c *Compiler) Compile(ctx context.Context, candidate domain.CandidatePattern) (domain.Matcher, error) {
	text := strings.TrimRight(string(candidate), "\r\n")
	if text == "" {
		return nil, &domain.PatternCompileError{
			Pattern:    string(candidate),
			Diagnostic: "pattern is empty and would match every line",
		}
	}

	re, err := regexp2.Compile(text, c.options)
	if err != nil {
		return nil, &domain.PatternCompileError{
			Pattern:    text,
			Diagnostic: err.Error(),
			Err:        err,
		}
	}

	if c.matchTimeout > 0 {
		re.MatchTimeout = c.matchTimeout
	}

	observability.FromContext(ctx).Debug("pattern compiled",
		observability.String("pattern", text),
		observability.String("dialect", string(c.dialect)))

	return &Pattern{re: re, source: text}, nil
}
