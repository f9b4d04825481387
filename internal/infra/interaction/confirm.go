// Where: cli/internal/infra/interaction/confirm.go
// What: Confirmation prompt using the huh TUI library.
// Why: Offer a keyboard-driven confirm on terminals, plain y/N elsewhere.
package interaction

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
)

var runConfirmPrompt = func(title, description string, confirmed *bool) error {
	return huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(confirmed).
		Run()
}

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(title, description string) (bool, error)
}

// TerminalConfirmer uses huh when In is a terminal and a y/N line prompt otherwise.
type TerminalConfirmer struct {
	In  *os.File
	Out io.Writer
}

func (c TerminalConfirmer) Confirm(title, description string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	if IsTerminal(in) {
		var confirmed bool
		if err := runConfirmPrompt(title, description, &confirmed); err != nil {
			return false, fmt.Errorf("prompt confirm: %w", err)
		}
		return confirmed, nil
	}
	message := title
	if description != "" {
		message = title + " (" + description + ")"
	}
	return PromptYesNoWithIO(in, c.Out, message)
}
