// Where: cli/internal/infra/config/release.go
// What: release-sweep.yaml load and defaults.
// Why: Keep image coordinates, trim policy, and ledger sinks out of code.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/meta"
)

// Default product names inside the release manifest.
const (
	DefaultAgentProduct      = "mongodb-agent"
	DefaultOpsManagerProduct = "ops-manager"
)

// ReleaseConfig is the decoded release-sweep.yaml.
type ReleaseConfig struct {
	Manifest string         `json:"manifest,omitempty"`
	CIConfig string         `json:"ciConfig,omitempty"`
	Products ProductsConfig `json:"products,omitempty"`
	Trim     TrimConfig     `json:"trim,omitempty"`
	Images   ImagesConfig   `json:"images,omitempty"`
	Ledger   LedgerConfig   `json:"ledger,omitempty"`
}

// ProductsConfig names the manifest products the release sweep reads.
type ProductsConfig struct {
	Agent      string `json:"agent,omitempty"`
	OpsManager string `json:"opsManager,omitempty"`
}

// TrimConfig is the matrix trimming policy.
type TrimConfig struct {
	Floor    string   `json:"floor,omitempty"`
	Keep     int      `json:"keep,omitempty"`
	Products []string `json:"products,omitempty"`
}

// ImagesConfig holds the build recipe per artifact type.
type ImagesConfig struct {
	Agent      ImageConfig `json:"agent,omitempty"`
	OpsManager ImageConfig `json:"opsManager,omitempty"`
}

// ImageConfig describes how to build and where to publish one artifact type.
// String fields other than Repositories are text/template sources.
type ImageConfig struct {
	Repositories []string          `json:"repositories,omitempty"`
	Context      string            `json:"context,omitempty"`
	Dockerfile   string            `json:"dockerfile,omitempty"`
	Platform     string            `json:"platform,omitempty"`
	Tag          string            `json:"tag,omitempty"`
	BuildArgs    map[string]string `json:"buildArgs,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// LedgerConfig selects where the release ledger is persisted.
type LedgerConfig struct {
	File     string          `json:"file,omitempty"`
	S3       *S3Config       `json:"s3,omitempty"`
	DynamoDB *DynamoDBConfig `json:"dynamodb,omitempty"`
}

// S3Config stores the ledger as one JSON object.
type S3Config struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// DynamoDBConfig stores one item per ledger record.
type DynamoDBConfig struct {
	Table    string `json:"table"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// DefaultReleaseConfig returns the configuration used when no file is present.
func DefaultReleaseConfig() ReleaseConfig {
	return ReleaseConfig{
		Manifest: meta.DefaultManifestFile,
		CIConfig: meta.DefaultCIConfigFile,
		Products: ProductsConfig{
			Agent:      DefaultAgentProduct,
			OpsManager: DefaultOpsManagerProduct,
		},
		Trim: TrimConfig{
			Keep:     matrix.DefaultKeepPerMajor,
			Products: []string{DefaultOpsManagerProduct, DefaultAgentProduct},
		},
		Images: ImagesConfig{
			Agent: ImageConfig{
				Repositories: []string{"quay.io/mongodb/mongodb-agent"},
				Context:      ".",
				Dockerfile:   "docker/mongodb-agent/Dockerfile",
				Tag:          "{{ .Version }}",
				BuildArgs: map[string]string{
					"version":               "{{ .Version }}",
					"mongodb_tools_version": "{{ .ToolsVersion }}",
				},
			},
			OpsManager: ImageConfig{
				Repositories: []string{"quay.io/mongodb/mongodb-enterprise-ops-manager-ubi"},
				Context:      ".",
				Dockerfile:   "docker/mongodb-enterprise-ops-manager/Dockerfile",
				Tag:          "{{ .Version }}",
				BuildArgs: map[string]string{
					"version": "{{ .Version }}",
				},
			},
		},
	}
}

// LoadReleaseConfig reads path and fills unset fields from the defaults.
// A missing file is only an error when required is set.
func LoadReleaseConfig(path string, required bool) (ReleaseConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return DefaultReleaseConfig(), nil
		}
		return ReleaseConfig{}, fmt.Errorf("read release config: %w", err)
	}
	return ParseReleaseConfig(payload)
}

// ParseReleaseConfig decodes YAML (or JSON) and applies defaults.
func ParseReleaseConfig(payload []byte) (ReleaseConfig, error) {
	var cfg ReleaseConfig
	if err := yaml.UnmarshalStrict(payload, &cfg); err != nil {
		return ReleaseConfig{}, fmt.Errorf("decode release config: %w", err)
	}
	cfg.applyDefaults(DefaultReleaseConfig())
	if err := cfg.Validate(); err != nil {
		return ReleaseConfig{}, err
	}
	return cfg, nil
}

func (c *ReleaseConfig) applyDefaults(defaults ReleaseConfig) {
	if strings.TrimSpace(c.Manifest) == "" {
		c.Manifest = defaults.Manifest
	}
	if strings.TrimSpace(c.CIConfig) == "" {
		c.CIConfig = defaults.CIConfig
	}
	if c.Products.Agent == "" {
		c.Products.Agent = defaults.Products.Agent
	}
	if c.Products.OpsManager == "" {
		c.Products.OpsManager = defaults.Products.OpsManager
	}
	if c.Trim.Keep == 0 {
		c.Trim.Keep = defaults.Trim.Keep
	}
	if len(c.Trim.Products) == 0 {
		c.Trim.Products = []string{c.Products.OpsManager, c.Products.Agent}
	}
	c.Images.Agent.applyDefaults(defaults.Images.Agent)
	c.Images.OpsManager.applyDefaults(defaults.Images.OpsManager)
}

func (c *ImageConfig) applyDefaults(defaults ImageConfig) {
	if len(c.Repositories) == 0 {
		c.Repositories = defaults.Repositories
	}
	if c.Context == "" {
		c.Context = defaults.Context
	}
	if c.Dockerfile == "" {
		c.Dockerfile = defaults.Dockerfile
	}
	if c.Tag == "" {
		c.Tag = defaults.Tag
	}
	if c.BuildArgs == nil {
		c.BuildArgs = defaults.BuildArgs
	}
}

// Validate reports configuration that cannot drive a release.
func (c ReleaseConfig) Validate() error {
	if c.Trim.Keep < 0 {
		return fmt.Errorf("trim.keep must not be negative (got %d)", c.Trim.Keep)
	}
	if c.Trim.Floor != "" && !validVersion(c.Trim.Floor) {
		return fmt.Errorf("trim.floor %q is not a semantic version", c.Trim.Floor)
	}
	for name, img := range map[string]ImageConfig{"agent": c.Images.Agent, "opsManager": c.Images.OpsManager} {
		for _, repo := range img.Repositories {
			if strings.TrimSpace(repo) == "" {
				return fmt.Errorf("images.%s.repositories contains an empty entry", name)
			}
		}
	}
	if s3 := c.Ledger.S3; s3 != nil && (s3.Bucket == "" || s3.Key == "") {
		return fmt.Errorf("ledger.s3 requires bucket and key")
	}
	if ddb := c.Ledger.DynamoDB; ddb != nil && ddb.Table == "" {
		return fmt.Errorf("ledger.dynamodb requires table")
	}
	return nil
}
