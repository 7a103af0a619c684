// Command sgrep prints the lines of standard input that match a pattern
// described in natural language.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs one invocation and returns the process exit status.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "sgrep: %v\n", err)

		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(stderr, "Run 'sgrep --help' for usage.")
			return exitUsage
		}
		return exitError
	}

	return exitOK
}
