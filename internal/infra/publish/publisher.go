// Where: cli/internal/infra/publish/publisher.go
// What: Idempotent image publishing with bounded push retries.
// Why: Context layers are immutable once pushed; everything else is re-pushed safely.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/domain/image"
	"github.com/poruru/release-sweep/cli/internal/infra/runner"
)

// DefaultAttempts is the push attempt budget.
const DefaultAttempts = 4

var errCommandRunnerNil = errors.New("command runner is nil")

// ExistenceOracle reports whether repository:tag is already in its registry.
type ExistenceOracle interface {
	Exists(ctx context.Context, repository, tag string) bool
}

// Outcome describes what Publish did.
type Outcome int

const (
	Pushed Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "pushed"
}

// PublishError reports a push that failed on every attempt.
type PublishError struct {
	Reference string
	Attempts  int
	Output    string
	Err       error
}

func (e *PublishError) Error() string {
	msg := fmt.Sprintf("push %s failed after %d attempt(s): %v", e.Reference, e.Attempts, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Publisher pushes tagged images, skipping immutable context tags that already exist.
type Publisher struct {
	Runner   runner.CommandRunner
	Oracle   ExistenceOracle
	Tool     string
	Attempts int
	Logger   *zap.Logger
}

// Publish pushes repository:tag unless it is a context tag already present
// in a non-ECR registry.
func (p *Publisher) Publish(ctx context.Context, repository, tag string) (Outcome, error) {
	if p.Runner == nil {
		return Pushed, errCommandRunnerNil
	}
	reference := repository + ":" + tag
	logger := p.logger().With(zap.String("image", reference))

	if p.shouldSkip(ctx, repository, tag) {
		logger.Info("image already present, skipping push")
		return Skipped, nil
	}

	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	var (
		lastOutput []byte
		lastErr    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		output, err := p.Runner.RunOutput(ctx, "", p.tool(), "push", reference)
		if err == nil {
			logger.Info("pushed", zap.Int("attempt", attempt))
			return Pushed, nil
		}
		lastOutput, lastErr = output, err
		logger.Warn("push failed", zap.Int("attempt", attempt), zap.Int("of", attempts), zap.Error(err))
		if ctx.Err() != nil {
			return Pushed, &PublishError{Reference: reference, Attempts: attempt, Output: strings.TrimSpace(string(lastOutput)), Err: ctx.Err()}
		}
	}
	return Pushed, &PublishError{
		Reference: reference,
		Attempts:  attempts,
		Output:    strings.TrimSpace(string(lastOutput)),
		Err:       lastErr,
	}
}

func (p *Publisher) shouldSkip(ctx context.Context, repository, tag string) bool {
	if p.Oracle == nil {
		return false
	}
	coord, err := image.ParseCoordinate(repository + ":" + tag)
	if err != nil || !coord.IsContext() || coord.IsECR() {
		return false
	}
	return p.Oracle.Exists(ctx, coord.Name(), coord.Tag)
}

func (p *Publisher) tool() string {
	if strings.TrimSpace(p.Tool) != "" {
		return p.Tool
	}
	return runner.DefaultTool
}

func (p *Publisher) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}
