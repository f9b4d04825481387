// Where: cli/internal/infra/ledger/sink.go
// What: Ledger persistence sinks (local file, S3 object, DynamoDB items).
// Why: Release results must outlive the terminal that printed them.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/poruru/release-sweep/cli/internal/domain/release"
	"github.com/poruru/release-sweep/cli/internal/infra/fileops"
)

var (
	errS3ClientNil       = errors.New("s3 client is nil")
	errDynamoDBClientNil = errors.New("dynamodb client is nil")
)

// Sink persists a ledger snapshot.
type Sink interface {
	Name() string
	Write(ctx context.Context, runID string, records []release.Record) error
}

// S3API is the subset of the S3 client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBSink.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

func timeNow(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

// FileSink writes the ledger document to a local path. Snapshots shorter than
// the last written one are ignored, so out-of-order incremental writes never
// shrink the file.
type FileSink struct {
	Path string
	Now  func() time.Time

	mu      sync.Mutex
	written int
}

func (s *FileSink) Name() string {
	return "file " + s.Path
}

func (s *FileSink) Write(_ context.Context, runID string, records []release.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(records) < s.written {
		return nil
	}
	payload, err := Marshal(NewDocument(runID, records, timeNow(s.Now)))
	if err != nil {
		return err
	}
	if err := fileops.WriteAtomic(s.Path, payload, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	s.written = len(records)
	return nil
}

// S3Sink uploads the ledger document as one object.
type S3Sink struct {
	Client S3API
	Bucket string
	Key    string
	Now    func() time.Time
}

func (s *S3Sink) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key)
}

func (s *S3Sink) Write(ctx context.Context, runID string, records []release.Record) error {
	if s.Client == nil {
		return errS3ClientNil
	}
	payload, err := Marshal(NewDocument(runID, records, timeNow(s.Now)))
	if err != nil {
		return err
	}
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put ledger object %s: %w", s.Name(), err)
	}
	return nil
}

// DynamoDBSink stores one item per record keyed by run_id and seq.
type DynamoDBSink struct {
	Client DynamoDBAPI
	Table  string
}

func (s *DynamoDBSink) Name() string {
	return "dynamodb " + s.Table
}

func (s *DynamoDBSink) Write(ctx context.Context, runID string, records []release.Record) error {
	if s.Client == nil {
		return errDynamoDBClientNil
	}
	for _, record := range records {
		_, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.Table),
			Item:      recordItem(runID, record),
		})
		if err != nil {
			return fmt.Errorf("put ledger item %d: %w", record.Seq, err)
		}
	}
	return nil
}

func recordItem(runID string, record release.Record) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"run_id":    &types.AttributeValueMemberS{Value: runID},
		"seq":       &types.AttributeValueMemberN{Value: strconv.Itoa(record.Seq)},
		"type":      &types.AttributeValueMemberS{Value: string(record.Type)},
		"version":   &types.AttributeValueMemberS{Value: record.Version},
		"status":    &types.AttributeValueMemberS{Value: string(record.Status)},
		"timestamp": &types.AttributeValueMemberS{Value: record.Timestamp.UTC().Format(time.RFC3339)},
	}
	optional := map[string]string{
		"context": record.Context,
		"digest":  record.Digest,
		"error":   record.Error,
	}
	for key, value := range optional {
		if value != "" {
			item[key] = &types.AttributeValueMemberS{Value: value}
		}
	}
	if images := uniqueStrings(record.Images); len(images) > 0 {
		item["images"] = &types.AttributeValueMemberSS{Value: images}
	}
	if skipped := uniqueStrings(record.Skipped); len(skipped) > 0 {
		item["skipped"] = &types.AttributeValueMemberSS{Value: skipped}
	}
	return item
}

// uniqueStrings drops empty and repeated values; DynamoDB rejects string sets
// containing either.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
