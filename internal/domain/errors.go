package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Each typed error below matches exactly one of these with errors.Is.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrTransportFailure  = errors.New("translation transport failure")
	ErrEmptyTranslation  = errors.New("empty translation")
	ErrPatternCompile    = errors.New("pattern compile error")
	ErrLineRead          = errors.New("line read error")
	ErrMatch             = errors.New("match error")
	ErrOutput            = errors.New("output error")
)

// MissingCredentialError reports that no token is available for a provider.
type MissingCredentialError struct {
	Provider string
	Err      error
}

func (e *MissingCredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no credential available for provider %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("no credential available for provider %s; run 'sgrep --auth AUTH_TOKEN'", e.Provider)
}

func (e *MissingCredentialError) Is(target error) bool { return target == ErrMissingCredential }

func (e *MissingCredentialError) Unwrap() error { return e.Err }

// TransportError reports that the remote translation call could not be completed.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("translation request to %s failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransportFailure }

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyTranslationError reports that the service answered without usable content.
type EmptyTranslationError struct {
	Provider string
	Reason   string
}

func (e *EmptyTranslationError) Error() string {
	return fmt.Sprintf("%s returned no pattern: %s", e.Provider, e.Reason)
}

func (e *EmptyTranslationError) Is(target error) bool { return target == ErrEmptyTranslation }

// PatternCompileError reports that the translated text is not a valid pattern.
type PatternCompileError struct {
	Pattern    string
	Diagnostic string
	Err        error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("translated text %q is not a valid pattern: %s", e.Pattern, e.Diagnostic)
}

func (e *PatternCompileError) Is(target error) bool { return target == ErrPatternCompile }

func (e *PatternCompileError) Unwrap() error { return e.Err }

// LineReadError reports an input line that could not be read or decoded.
// Line is 1-based.
type LineReadError struct {
	Line int
	Err  error
}

func (e *LineReadError) Error() string {
	return fmt.Sprintf("reading input line %d: %v", e.Line, e.Err)
}

func (e *LineReadError) Is(target error) bool { return target == ErrLineRead }

func (e *LineReadError) Unwrap() error { return e.Err }

// MatchError reports that the engine failed while testing a line, e.g. on timeout.
type MatchError struct {
	Line int
	Err  error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("matching input line %d: %v", e.Line, e.Err)
}

func (e *MatchError) Is(target error) bool { return target == ErrMatch }

func (e *MatchError) Unwrap() error { return e.Err }

// OutputError reports a failure writing matched lines.
type OutputError struct {
	Line int
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("writing output for input line %d: %v", e.Line, e.Err)
}

func (e *OutputError) Is(target error) bool { return target == ErrOutput }

func (e *OutputError) Unwrap() error { return e.Err }
