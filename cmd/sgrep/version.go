package main

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
)

func versionText() string {
	return fmt.Sprintf("sgrep v%s\nCommit: %s\nGo version: %s\nOS/Arch: %s/%s\n",
		version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
