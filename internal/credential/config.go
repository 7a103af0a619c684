package credential

// Config locates the credential store. An empty File selects DefaultPath.
type Config struct {
	File string `env:"SGREP_CREDENTIALS_FILE"`
}
