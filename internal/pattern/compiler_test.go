package pattern_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/sgrep/internal/domain"
	"github.com/davidbz/sgrep/internal/pattern"
)

func newCompiler(t *testing.T, cfg pattern.Config) *pattern.Compiler {
	t.Helper()
	compiler, err := pattern.NewCompiler(cfg)
	require.NoError(t, err)
	return compiler
}

func TestNewCompiler(t *testing.T) {
	t.Run("should accept known dialects", func(t *testing.T) {
		for _, dialect := range []pattern.Dialect{"", pattern.DialectRE2, pattern.DialectPerl, pattern.DialectECMAScript} {
			_, err := pattern.NewCompiler(pattern.Config{Dialect: dialect})
			require.NoError(t, err, "dialect %q", dialect)
		}
	})

	t.Run("should reject unknown dialect", func(t *testing.T) {
		compiler, err := pattern.NewCompiler(pattern.Config{Dialect: "posix"})
		require.Error(t, err)
		require.Nil(t, compiler)
		require.Contains(t, err.Error(), "unsupported pattern dialect")
	})
}

func TestCompiler_Compile(t *testing.T) {
	ctx := context.Background()

	t.Run("should compile IPv4 pattern", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{Dialect: pattern.DialectRE2})

		m, err := compiler.Compile(ctx, `\b\d{1,3}(\.\d{1,3}){3}\b`)
		require.NoError(t, err)
		require.Equal(t, `\b\d{1,3}(\.\d{1,3}){3}\b`, m.String())

		matched, err := m.Match("server 10.0.0.1 up")
		require.NoError(t, err)
		require.True(t, matched)

		matched, err = m.Match("no ip here")
		require.NoError(t, err)
		require.False(t, matched)
	})

	t.Run("should fail with PatternCompileError on invalid syntax", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{Dialect: pattern.DialectRE2})

		m, err := compiler.Compile(ctx, "[unterminated")
		require.Error(t, err)
		require.Nil(t, m)
		require.ErrorIs(t, err, domain.ErrPatternCompile)

		var compileErr *domain.PatternCompileError
		require.True(t, errors.As(err, &compileErr))
		require.Equal(t, "[unterminated", compileErr.Pattern)
		require.NotEmpty(t, compileErr.Diagnostic)
	})

	t.Run("should drop only trailing line terminators", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{})

		m, err := compiler.Compile(ctx, "error\\s+\\d+\r\n")
		require.NoError(t, err)
		require.Equal(t, `error\s+\d+`, m.String())
	})

	t.Run("should keep an escaped trailing space", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{})

		m, err := compiler.Compile(ctx, `error:\ `)
		require.NoError(t, err)
		require.Equal(t, `error:\ `, m.String())

		matched, err := m.Match("error: disk full")
		require.NoError(t, err)
		require.True(t, matched)

		matched, err = m.Match("error:disk full")
		require.NoError(t, err)
		require.False(t, matched)
	})

	t.Run("should keep a leading space", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{})

		m, err := compiler.Compile(ctx, " error")
		require.NoError(t, err)
		require.Equal(t, " error", m.String())

		matched, err := m.Match("noerror")
		require.NoError(t, err)
		require.False(t, matched)

		matched, err = m.Match("fatal error")
		require.NoError(t, err)
		require.True(t, matched)
	})

	t.Run("should reject blank pattern", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{})

		for _, blank := range []string{"", "\n", "\r\n"} {
			_, err := compiler.Compile(ctx, domain.CandidatePattern(blank))
			require.ErrorIs(t, err, domain.ErrPatternCompile)
			require.Contains(t, err.Error(), "would match every line")
		}
	})

	t.Run("should not fall back to literal matching", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{})

		_, err := compiler.Compile(ctx, "a(b")
		require.ErrorIs(t, err, domain.ErrPatternCompile)
	})

	t.Run("should honor ignore case", func(t *testing.T) {
		compiler := newCompiler(t, pattern.Config{IgnoreCase: true})

		m, err := compiler.Compile(ctx, "error")
		require.NoError(t, err)

		matched, err := m.Match("FATAL ERROR")
		require.NoError(t, err)
		require.True(t, matched)
	})

	t.Run("should accept RE2 named groups in re2 dialect", func(t *testing.T) {
		re2 := newCompiler(t, pattern.Config{Dialect: pattern.DialectRE2})

		m, err := re2.Compile(ctx, `(?P<year>\d{4})-\d{2}`)
		require.NoError(t, err)

		matched, err := m.Match("released 2024-06")
		require.NoError(t, err)
		assert.True(t, matched)
	})

	t.Run("should still accept lookahead in re2 dialect", func(t *testing.T) {
		re2 := newCompiler(t, pattern.Config{Dialect: pattern.DialectRE2})

		m, err := re2.Compile(ctx, `foo(?=bar)`)
		require.NoError(t, err)

		matched, err := m.Match("foobaz")
		require.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("should support lookahead in perl dialect", func(t *testing.T) {
		perl := newCompiler(t, pattern.Config{Dialect: pattern.DialectPerl})

		m, err := perl.Compile(ctx, `foo(?=bar)`)
		require.NoError(t, err)

		matched, err := m.Match("foobar")
		require.NoError(t, err)
		assert.True(t, matched)

		matched, err = m.Match("foobaz")
		require.NoError(t, err)
		assert.False(t, matched)
	})
}

func TestCompiler_Determinism(t *testing.T) {
	ctx := context.Background()
	compiler := newCompiler(t, pattern.Config{})

	first, err := compiler.Compile(ctx, `^(GET|POST) /api/v\d+/`)
	require.NoError(t, err)
	second, err := compiler.Compile(ctx, `^(GET|POST) /api/v\d+/`)
	require.NoError(t, err)

	inputs := []string{
		"GET /api/v1/users",
		"POST /api/v22/orders",
		"PUT /api/v1/users",
		" GET /api/v1/users",
		"",
	}
	for _, input := range inputs {
		a, errA := first.Match(input)
		b, errB := second.Match(input)
		require.NoError(t, errA)
		require.NoError(t, errB)
		require.Equal(t, a, b, "input %q", input)
	}
}

func TestPattern_Spans(t *testing.T) {
	ctx := context.Background()
	compiler := newCompiler(t, pattern.Config{})

	t.Run("should return rune offsets of all matches", func(t *testing.T) {
		m, err := compiler.Compile(ctx, `\d+`)
		require.NoError(t, err)

		spans, err := m.Spans("é12 and 345")
		require.NoError(t, err)
		require.Equal(t, []domain.Span{{Start: 1, End: 3}, {Start: 8, End: 11}}, spans)
	})

	t.Run("should return no spans when nothing matches", func(t *testing.T) {
		m, err := compiler.Compile(ctx, `\d+`)
		require.NoError(t, err)

		spans, err := m.Spans("letters only")
		require.NoError(t, err)
		require.Empty(t, spans)
	})
}

func TestPattern_MatchTimeout(t *testing.T) {
	compiler := newCompiler(t, pattern.Config{Dialect: pattern.DialectPerl, MatchTimeout: time.Millisecond})

	m, err := compiler.Compile(context.Background(), `^(a+)+$`)
	require.NoError(t, err)

	input := ""
	for i := 0; i < 40; i++ {
		input += "a"
	}
	input += "!"

	_, err = m.Match(input)
	require.Error(t, err)
}

func TestPattern_ConcurrentUse(t *testing.T) {
	compiler := newCompiler(t, pattern.Config{})
	m, err := compiler.Compile(context.Background(), `warn|error`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			line := "info"
			if idx%2 == 0 {
				line = "error"
			}
			matched, matchErr := m.Match(line)
			assert.NoError(t, matchErr)
			assert.Equal(t, idx%2 == 0, matched)
		}(i)
	}
	wg.Wait()
}
