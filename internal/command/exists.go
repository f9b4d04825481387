// Where: cli/internal/command/exists.go
// What: exists command adapter.
// Why: Let CI scripts ask the same question the publisher asks before a push.
package command

import (
	"context"
	"fmt"

	"github.com/poruru/release-sweep/cli/internal/domain/image"
	"github.com/poruru/release-sweep/cli/internal/infra/registry"
)

// ExistenceOracle reports whether repository:tag is in its registry.
type ExistenceOracle interface {
	Exists(ctx context.Context, repository, tag string) bool
}

// ExistsDeps holds the oracle override used in tests.
type ExistsDeps struct {
	Oracle ExistenceOracle
}

func runExists(cli CLI, deps Dependencies) int {
	out := deps.Out
	cmd := cli.Exists

	coord, err := image.ParseCoordinate(cmd.Repository + ":" + cmd.Tag)
	if err != nil {
		return exitWithError(out, err)
	}
	if coord.IsDigest() {
		return exitWithError(out, fmt.Errorf("%s: digest references are not supported", coord))
	}
	logger := newLogger(cli, deps)
	defer func() { _ = logger.Sync() }()

	oracle := deps.Exists.Oracle
	if oracle == nil {
		oracle = registry.NewOracle(logger)
	}
	userInterface := consoleUI(out, emojiEnabled(out, cli.NoEmoji))
	if oracle.Exists(deps.Context, coord.Name(), coord.Tag) {
		userInterface.Success(fmt.Sprintf("%s exists", coord))
		return 0
	}
	userInterface.Info(fmt.Sprintf("%s not found", coord))
	return 1
}
