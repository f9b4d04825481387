// Where: cli/internal/command/output.go
// What: Output helpers for command adapters.
// Why: Centralize UserInterface usage and emoji detection.
package command

import (
	"io"
	"os"

	"github.com/poruru/release-sweep/cli/internal/infra/interaction"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
)

func consoleUI(out io.Writer, emoji bool) ui.UserInterface {
	return ui.NewConsoleUI(out, emoji)
}

// emojiEnabled decorates output only when writing to a terminal.
func emojiEnabled(out io.Writer, disabled bool) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return interaction.EmojiEnabled(file, disabled)
}
