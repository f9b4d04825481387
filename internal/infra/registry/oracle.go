// Where: cli/internal/infra/registry/oracle.go
// What: Registry existence checks over the OCI distribution API.
// Why: Let the publisher skip pushes of immutable tags that are already present.
package registry

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/domain/image"
)

const (
	// ManifestV2MediaType is the Accept header sent with manifest lookups.
	ManifestV2MediaType = "application/vnd.docker.distribution.manifest.v2+json"
	// DefaultTimeout bounds a single existence lookup.
	DefaultTimeout = 3 * time.Second
)

// Oracle answers whether repository:tag already exists in its registry.
type Oracle struct {
	Client *http.Client
	Scheme string
	Logger *zap.Logger
}

// NewOracle returns an Oracle using https and a per-registry proxy policy.
func NewOracle(logger *zap.Logger) *Oracle {
	return &Oracle{Logger: logger}
}

// Exists queries the manifest endpoint. Any error or non-200 answer yields false.
func (o *Oracle) Exists(ctx context.Context, repository, tag string) bool {
	host, path := image.SplitRepository(repository)
	logger := o.logger().With(zap.String("repository", repository), zap.String("tag", tag))
	if host == "" || path == "" || strings.TrimSpace(tag) == "" {
		logger.Debug("existence check skipped: incomplete coordinate")
		return false
	}

	url := fmt.Sprintf("%s://%s/v2/%s/manifests/%s", o.scheme(), host, path, tag)
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		logger.Debug("existence check request", zap.Error(err))
		return false
	}
	req.Header.Set("Accept", ManifestV2MediaType)

	resp, err := o.client(host).Do(req)
	if err != nil {
		logger.Debug("existence check failed", zap.Error(err))
		return false
	}
	_ = resp.Body.Close()
	logger.Debug("existence check", zap.Int("status", resp.StatusCode))
	return resp.StatusCode == http.StatusOK
}

func (o *Oracle) scheme() string {
	if o.Scheme != "" {
		return o.Scheme
	}
	return "https"
}

func (o *Oracle) client(host string) *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return registryHTTPClient(host)
}

func (o *Oracle) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func registryHTTPClient(host string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if shouldBypassRegistryProxy(host) {
		transport.Proxy = nil
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

func isLocalRegistryHost(host string) bool {
	switch host {
	case "registry", "localhost", "127.0.0.1", "host.docker.internal":
		return true
	default:
		return false
	}
}

func shouldBypassRegistryProxy(host string) bool {
	normalized := strings.ToLower(strings.TrimSpace(host))
	if splitHost, _, err := net.SplitHostPort(normalized); err == nil {
		normalized = splitHost
	}
	normalized = strings.Trim(normalized, "[]")
	if normalized == "" {
		return false
	}
	if isLocalRegistryHost(normalized) {
		return true
	}
	ip := net.ParseIP(normalized)
	return ip != nil && ip.IsLoopback()
}
