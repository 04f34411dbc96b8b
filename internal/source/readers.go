package source

import (
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"
)

// Reader returns the raw content of a location.
type Reader interface {
	Read(ctx context.Context, location Location) ([]byte, error)
}

// FileReader reads local files.
type FileReader struct{}

func (FileReader) Read(ctx context.Context, location Location) ([]byte, error) {
	data, err := os.ReadFile(location.Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// S3API is the subset of the S3 client used to fetch snapshots.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds the configuration of the S3 reader. Empty fields fall back
// to the default AWS configuration chain.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Reader reads objects from S3 or S3 compatible stores.
type S3Reader struct {
	client S3API
}

func NewS3Reader(client S3API) *S3Reader {
	return &S3Reader{client: client}
}

// NewS3ReaderFromConfig loads the AWS configuration and builds the client.
func NewS3ReaderFromConfig(ctx context.Context, cfg S3Config) (*S3Reader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3Reader(s3.NewFromConfig(awsCfg, s3Opts...)), nil
}

func (r *S3Reader) Read(ctx context.Context, location Location) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(location.Bucket),
		Key:    aws.String(location.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s: %w", location, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// GCSReader reads objects from Cloud Storage.
type GCSReader struct {
	client *gcs.Client
}

// NewGCSReader uses Application Default Credentials. An endpoint switches the
// client to an unauthenticated emulator.
func NewGCSReader(ctx context.Context, endpoint string) (*GCSReader, error) {
	opts := make([]option.ClientOption, 0)
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSReader{client: client}, nil
}

func (r *GCSReader) Read(ctx context.Context, location Location) ([]byte, error) {
	reader, err := r.client.Bucket(location.Bucket).Object(location.Key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", location, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (r *GCSReader) Close() error {
	return r.client.Close()
}
