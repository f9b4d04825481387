// Where: cli/internal/usecase/release/releaser.go
// What: Releaser that builds an image once and publishes it to every repository.
// Why: Bridge the sweep to the builder and publisher behind narrow interfaces.
package release

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/domain/image"
	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/infra/build"
	"github.com/poruru/release-sweep/cli/internal/infra/config"
	"github.com/poruru/release-sweep/cli/internal/infra/logging"
	"github.com/poruru/release-sweep/cli/internal/infra/publish"
)

var (
	errBuilderNotConfigured   = errors.New("image builder is not configured")
	errPublisherNotConfigured = errors.New("image publisher is not configured")
)

// ImageBuilder builds local images and manages their tags.
type ImageBuilder interface {
	Build(ctx context.Context, req build.BuildRequest) (build.Image, error)
	Tag(ctx context.Context, img build.Image, target string) error
	Cleanup(ctx context.Context, img build.Image)
}

// ImagePublisher pushes repository:tag.
type ImagePublisher interface {
	Publish(ctx context.Context, repository, tag string) (publish.Outcome, error)
}

// ImageReleaser renders the configured recipe for an artifact, builds it,
// and publishes the result to each target repository.
type ImageReleaser struct {
	Builder   ImageBuilder
	Publisher ImagePublisher
	Images    config.ImagesConfig
	Products  config.ProductsConfig
	Logger    *zap.Logger
}

func (r ImageReleaser) ReleaseAgent(ctx context.Context, pairing matrix.AgentPairing, releaseContext string) (Outcome, error) {
	return r.release(ctx, r.Images.Agent, config.TemplateData{
		Product:      r.Products.Agent,
		Version:      pairing.AgentVersion,
		AgentVersion: pairing.AgentVersion,
		ToolsVersion: pairing.ToolsVersion,
		Context:      releaseContext,
	})
}

func (r ImageReleaser) ReleaseOpsManager(ctx context.Context, omVersion string) (Outcome, error) {
	return r.release(ctx, r.Images.OpsManager, config.TemplateData{
		Product: r.Products.OpsManager,
		Version: omVersion,
	})
}

func (r ImageReleaser) release(ctx context.Context, recipe config.ImageConfig, data config.TemplateData) (Outcome, error) {
	if r.Builder == nil {
		return Outcome{}, errBuilderNotConfigured
	}
	if r.Publisher == nil {
		return Outcome{}, errPublisherNotConfigured
	}
	rendered, err := recipe.Render(data)
	if err != nil {
		return Outcome{}, fmt.Errorf("render %s recipe: %w", data.Product, err)
	}
	if len(rendered.Repositories) == 0 {
		return Outcome{}, fmt.Errorf("no repositories configured for %s", data.Product)
	}
	targets := make([]image.Coordinate, 0, len(rendered.Repositories))
	for _, repo := range rendered.Repositories {
		coord, err := image.ParseCoordinate(repo + ":" + rendered.Tag)
		if err != nil {
			return Outcome{}, err
		}
		if coord.IsDigest() {
			return Outcome{}, fmt.Errorf("cannot publish %s to a digest reference", coord)
		}
		targets = append(targets, coord)
	}

	built, err := r.Builder.Build(ctx, build.BuildRequest{
		ContextDir: rendered.ContextDir,
		Dockerfile: rendered.Dockerfile,
		BuildArgs:  rendered.BuildArgs,
		Labels:     rendered.Labels,
		Platform:   rendered.Platform,
	})
	if err != nil {
		return Outcome{}, err
	}
	defer r.Builder.Cleanup(ctx, built)

	outcome := Outcome{Digest: built.ID.String()}
	logger := logging.OrNop(r.Logger)
	for _, target := range targets {
		reference := target.String()
		if err := r.Builder.Tag(ctx, built, reference); err != nil {
			return outcome, err
		}
		result, err := r.Publisher.Publish(ctx, target.Name(), target.Tag)
		if err != nil {
			return outcome, err
		}
		if result == publish.Skipped {
			outcome.Skipped = append(outcome.Skipped, reference)
			logger.Info("kept existing context image", zap.String("image", reference))
			continue
		}
		outcome.Images = append(outcome.Images, reference)
	}
	return outcome, nil
}
