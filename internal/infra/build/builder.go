// Where: cli/internal/infra/build/builder.go
// What: Image builder driving `docker buildx build` and the Docker SDK.
// Why: Release steps need a local image with a known ID before tagging and pushing.
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/infra/runner"
	"github.com/poruru/release-sweep/cli/internal/meta"
)

// DockerClient defines the subset of Docker SDK methods used by the builder.
type DockerClient interface {
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	ImageTag(ctx context.Context, source, target string) error
	ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error)
}

// NewDockerClient constructs a Docker SDK client using environment defaults.
func NewDockerClient() (*client.Client, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return dockerClient, nil
}

// BuildRequest describes one image build.
type BuildRequest struct {
	ContextDir string
	Dockerfile string
	BuildArgs  map[string]string
	Labels     map[string]string
	Platform   string
}

// Image is a locally built image addressed by its temporary tag.
type Image struct {
	Tag string
	ID  digest.Digest
}

// Builder builds images with buildx and manages the resulting local tags.
type Builder struct {
	Runner runner.CommandRunner
	Docker DockerClient
	Tool   string
	Logger *zap.Logger
	NewTag func() string
}

// Build runs buildx for req and returns the loaded image.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (Image, error) {
	if b.Runner == nil {
		return Image{}, errCommandRunnerNil
	}
	if b.Docker == nil {
		return Image{}, errDockerClientNil
	}
	if strings.TrimSpace(req.ContextDir) == "" {
		return Image{}, errContextDirRequired
	}

	tag := b.tempTag()
	args := buildArgs(req, tag)
	logger := b.logger()
	logger.Info("building image",
		zap.String("context", req.ContextDir),
		zap.String("dockerfile", resolveDockerfile(req.ContextDir, req.Dockerfile)),
		zap.String("tag", tag),
	)

	output, err := b.Runner.RunOutput(ctx, "", b.tool(), args...)
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		return Image{}, &BuildError{
			Context: req.ContextDir,
			Output:  trimmed,
			Hint:    buildxHint(trimmed),
			Err:     err,
		}
	}
	logger.Debug("build output", zap.ByteString("output", output))

	inspect, err := b.Docker.ImageInspect(ctx, tag)
	if err != nil {
		return Image{}, fmt.Errorf("inspect built image %s: %w", tag, err)
	}
	id, err := digest.Parse(inspect.ID)
	if err != nil {
		return Image{}, fmt.Errorf("built image %s has invalid id %q: %w", tag, inspect.ID, err)
	}
	return Image{Tag: tag, ID: id}, nil
}

// Tag points target at the built image.
func (b *Builder) Tag(ctx context.Context, img Image, target string) error {
	if b.Docker == nil {
		return errDockerClientNil
	}
	if err := b.Docker.ImageTag(ctx, img.Tag, target); err != nil {
		return fmt.Errorf("tag %s as %s: %w", img.Tag, target, err)
	}
	return nil
}

// Cleanup removes the temporary tag. Failures are logged only.
func (b *Builder) Cleanup(ctx context.Context, img Image) {
	if b.Docker == nil || img.Tag == "" {
		return
	}
	if _, err := b.Docker.ImageRemove(ctx, img.Tag, image.RemoveOptions{}); err != nil {
		b.logger().Debug("remove temporary tag", zap.String("tag", img.Tag), zap.Error(err))
	}
}

func (b *Builder) tempTag() string {
	if b.NewTag != nil {
		return b.NewTag()
	}
	return meta.BuildImageRepo + ":" + uuid.NewString()
}

func (b *Builder) tool() string {
	if strings.TrimSpace(b.Tool) != "" {
		return b.Tool
	}
	return runner.DefaultTool
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return zap.NewNop()
}

func resolveDockerfile(contextDir, dockerfile string) string {
	if strings.TrimSpace(dockerfile) == "" {
		dockerfile = "Dockerfile"
	}
	if filepath.IsAbs(dockerfile) {
		return dockerfile
	}
	return filepath.Join(contextDir, dockerfile)
}

func buildArgs(req BuildRequest, tag string) []string {
	args := []string{
		"buildx", "build", "--load", "--progress", "plain",
		req.ContextDir,
		"-f", resolveDockerfile(req.ContextDir, req.Dockerfile),
		"-t", tag,
	}
	for _, key := range sortedKeys(req.BuildArgs) {
		args = append(args, "--build-arg", key+"="+req.BuildArgs[key])
	}
	for _, key := range sortedKeys(req.Labels) {
		args = append(args, "--label", key+"="+req.Labels[key])
	}
	if platform := strings.TrimSpace(req.Platform); platform != "" {
		args = append(args, "--platform", platform)
	}
	return args
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func buildxHint(output string) string {
	if output == "" {
		return ""
	}
	normalized := strings.ToLower(output)
	if !strings.Contains(normalized, "public.ecr.aws") {
		return ""
	}
	if strings.Contains(normalized, "403") || strings.Contains(normalized, "forbidden") || strings.Contains(normalized, "unauthorized") {
		return "Hint: public.ecr.aws denied the request. Docker credentials may be stale. Try 'docker logout public.ecr.aws' and retry, or run 'docker login public.ecr.aws'."
	}
	return ""
}
