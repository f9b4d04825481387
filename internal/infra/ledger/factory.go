// Where: cli/internal/infra/ledger/factory.go
// What: Sink construction from release config, including AWS clients.
// Why: Encapsulate SDK configuration for custom endpoints and regions.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/poruru/release-sweep/cli/internal/infra/config"
	"github.com/poruru/release-sweep/cli/internal/infra/envutil"
)

const defaultAWSRegion = "us-east-1"

// ClientFactory creates AWS clients for the remote sinks.
type ClientFactory interface {
	S3(ctx context.Context, region, endpoint string) (S3API, error)
	DynamoDB(ctx context.Context, region, endpoint string) (DynamoDBAPI, error)
}

// AWSClientFactory builds real SDK clients.
type AWSClientFactory struct{}

func (AWSClientFactory) S3(ctx context.Context, region, endpoint string) (S3API, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	}), nil
}

func (AWSClientFactory) DynamoDB(ctx context.Context, region, endpoint string) (DynamoDBAPI, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(options *dynamodb.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// resolveRegion applies RELEASE_SWEEP_AWS_REGION when the config leaves the
// region empty. An empty result defers to the SDK chain.
func resolveRegion(region string) string {
	if region = strings.TrimSpace(region); region != "" {
		return region
	}
	return envutil.GetHostEnv("AWS_REGION")
}

// resolveEndpoint applies RELEASE_SWEEP_AWS_ENDPOINT when the config leaves
// the endpoint empty.
func resolveEndpoint(endpoint string) string {
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		return endpoint
	}
	return envutil.GetHostEnv("AWS_ENDPOINT")
}

// loadAWSConfig uses the default credential chain unless static keys are
// provided through RELEASE_SWEEP_AWS_ACCESS_KEY / RELEASE_SWEEP_AWS_SECRET_KEY.
// Without a region from config or environment the SDK chain decides, falling
// back to us-east-1.
func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	accessKey := envutil.GetHostEnv("AWS_ACCESS_KEY")
	secretKey := envutil.GetHostEnv("AWS_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = defaultAWSRegion
	}
	return cfg, nil
}

// Options selects sinks beyond the configured ones.
type Options struct {
	// FileOverride replaces ledger.file (the --ledger-out flag).
	FileOverride string
	RunID        string
	// LocalOnly skips the remote sinks. Dry runs set it so a preview never
	// writes to shared storage.
	LocalOnly bool
}

// Sinks holds the sinks built from configuration. File is written after
// every record; Remote sinks are written once at the end of the run.
type Sinks struct {
	File   *FileSink
	Remote []Sink
}

// All returns every sink, file first.
func (s Sinks) All() []Sink {
	var out []Sink
	if s.File != nil {
		out = append(out, s.File)
	}
	return append(out, s.Remote...)
}

// FromConfig builds the sinks described by cfg.
func FromConfig(ctx context.Context, cfg config.LedgerConfig, opts Options, factory ClientFactory) (Sinks, error) {
	var sinks Sinks
	path := strings.TrimSpace(opts.FileOverride)
	if path == "" {
		path = strings.TrimSpace(cfg.File)
	}
	if path != "" {
		sinks.File = &FileSink{Path: path}
	}
	if opts.LocalOnly {
		return sinks, nil
	}
	if factory == nil {
		factory = AWSClientFactory{}
	}

	if s3cfg := cfg.S3; s3cfg != nil {
		key, err := config.Render(s3cfg.Key, config.TemplateData{RunID: opts.RunID})
		if err != nil {
			return Sinks{}, fmt.Errorf("ledger.s3.key: %w", err)
		}
		client, err := factory.S3(ctx, resolveRegion(s3cfg.Region), resolveEndpoint(s3cfg.Endpoint))
		if err != nil {
			return Sinks{}, fmt.Errorf("ledger s3 client: %w", err)
		}
		sinks.Remote = append(sinks.Remote, &S3Sink{Client: client, Bucket: s3cfg.Bucket, Key: key})
	}
	if ddb := cfg.DynamoDB; ddb != nil {
		client, err := factory.DynamoDB(ctx, resolveRegion(ddb.Region), resolveEndpoint(ddb.Endpoint))
		if err != nil {
			return Sinks{}, fmt.Errorf("ledger dynamodb client: %w", err)
		}
		sinks.Remote = append(sinks.Remote, &DynamoDBSink{Client: client, Table: ddb.Table})
	}
	return sinks, nil
}
