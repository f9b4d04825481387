// Where: cli/internal/domain/image/coordinate.go
// What: Image coordinate parsing (registry host, repository path, tag).
// Why: Publisher and oracle need the same split of "host/path:tag".
package image

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

const (
	// DefaultTag is used when a reference carries no tag.
	DefaultTag = "latest"
	// ContextMarker identifies immutable shared context layers by tag.
	ContextMarker = "-context"

	ecrHostSuffix = "amazonaws.com"
)

// Coordinate identifies one image in a registry.
type Coordinate struct {
	Registry   string
	Repository string
	Tag        string
}

// ParseCoordinate parses "host/path[:tag|@sha256:...]". A missing tag becomes "latest".
func ParseCoordinate(reference string) (Coordinate, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return Coordinate{}, fmt.Errorf("image reference is required")
	}
	ref, err := name.ParseReference(trimmed, name.WithDefaultTag(DefaultTag))
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse image reference %q: %w", reference, err)
	}
	repo := ref.Context()
	return Coordinate{
		Registry:   repo.RegistryStr(),
		Repository: repo.RepositoryStr(),
		Tag:        ref.Identifier(),
	}, nil
}

// SplitRepository splits "host/path" into its registry host and path.
// The first segment is always the host, as registries in release manifests are fully qualified.
func SplitRepository(repository string) (host string, path string) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repository), "/")
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	if slash := strings.Index(trimmed, "/"); slash != -1 {
		return trimmed[:slash], trimmed[slash+1:]
	}
	return trimmed, ""
}

// Name returns "registry/repository".
func (c Coordinate) Name() string {
	if c.Registry == "" {
		return c.Repository
	}
	return c.Registry + "/" + c.Repository
}

// String renders the coordinate as a pullable reference.
func (c Coordinate) String() string {
	tag := c.Tag
	if tag == "" {
		tag = DefaultTag
	}
	if c.IsDigest() {
		return c.Name() + "@" + tag
	}
	return c.Name() + ":" + tag
}

// IsDigest reports whether the tag is a content digest rather than a mutable tag.
func (c Coordinate) IsDigest() bool {
	return IsDigestTag(c.Tag)
}

// IsContext reports whether the tag names a shared context layer.
func (c Coordinate) IsContext() bool {
	return IsContextTag(c.Tag)
}

// IsECR reports whether the coordinate lives in an Elastic Container Registry.
func (c Coordinate) IsECR() bool {
	return IsECRRegistry(c.Registry)
}

// IsDigestTag reports whether tag has the "algorithm:hex" digest form.
func IsDigestTag(tag string) bool {
	return strings.HasPrefix(strings.TrimSpace(tag), "sha256:")
}

// IsContextTag reports whether tag carries the context marker.
func IsContextTag(tag string) bool {
	return strings.Contains(tag, ContextMarker)
}

// IsECRRegistry reports whether the registry (or repository) is hosted on ECR.
func IsECRRegistry(registry string) bool {
	host, _ := SplitRepository(registry)
	host = strings.ToLower(host)
	if colon := strings.Index(host, ":"); colon != -1 {
		host = host[:colon]
	}
	return strings.HasSuffix(host, ecrHostSuffix)
}
