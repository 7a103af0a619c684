package pattern

import (
	"github.com/dlclark/regexp2"

	"github.com/davidbz/sgrep/internal/domain"
)

// Pattern is a compiled, immutable matcher. regexp2.Regexp is safe for
// concurrent use, so a Pattern may be shared across goroutines.
type Pattern struct {
	re     *regexp2.Regexp
	source string
}

// Match reports whether the pattern matches anywhere in line.
func (p *Pattern) Match(line string) (bool, error) {
	return p.re.MatchString(line)
}

// Spans returns the rune offsets of every match in line.
func (p *Pattern) Spans(line string) ([]domain.Span, error) {
	var spans []domain.Span

	m, err := p.re.FindStringMatch(line)
	for err == nil && m != nil {
		spans = append(spans, domain.Span{Start: m.Index, End: m.Index + m.Length})
		m, err = p.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}

	return spans, nil
}

// String returns the compiled source text.
func (p *Pattern) String() string {
	return p.source
}
