// Where: cli/cmd/release-sweep/main.go
// What: CLI entrypoint.
// Why: Execute release-sweep commands with configured dependencies.
package main

import (
	"os"

	"github.com/poruru/release-sweep/cli/internal/command"
)

func main() {
	deps, stop := buildDependencies()
	code := command.Run(os.Args[1:], deps)
	stop()
	os.Exit(code)
}
