package static

// Config holds the canned reply returned by the static provider.
type Config struct {
	Response string `env:"SGREP_STATIC_RESPONSE"`
}
