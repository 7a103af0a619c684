package pattern

import "time"

// Dialect selects the syntax the candidate text is compiled with.
type Dialect string

const (
	// DialectRE2 sets regexp2's RE2 compatibility option. RE2-only forms such
	// as (?P<name>re) are accepted; lookaround and backreferences still compile.
	DialectRE2 Dialect = "re2"
	// DialectPerl accepts Perl/.NET syntax, including lookaround and backreferences.
	DialectPerl Dialect = "perl"
	// DialectECMAScript accepts JavaScript regular expression syntax.
	DialectECMAScript Dialect = "ecmascript"
)

// Config controls pattern compilation.
type Config struct {
	Dialect      Dialect       `env:"SGREP_DIALECT"       envDefault:"re2"`
	IgnoreCase   bool          `env:"SGREP_IGNORE_CASE"   envDefault:"false"`
	MatchTimeout time.Duration `env:"SGREP_MATCH_TIMEOUT" envDefault:"5s"`
}
