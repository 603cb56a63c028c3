package secret

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the S3 API used by S3.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates the secret object.
type S3Config struct {
	Bucket         string
	Key            string
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string // optional, for S3-compatible services
	ForcePathStyle bool   // for MinIO and similar
}

type s3Options struct {
	client        S3Client
	configOptions []func(*config.LoadOptions) error
}

// WithS3Client uses a pre-configured client instead of building one from S3Config.
func WithS3Client(client S3Client) Option {
	return func(o *options) { o.s3.client = client }
}

// WithS3ConfigOption adds an AWS config load option.
func WithS3ConfigOption(opt func(*config.LoadOptions) error) Option {
	return func(o *options) {
		if opt != nil {
			o.s3.configOptions = append(o.s3.configOptions, opt)
		}
	}
}

// S3 provides a secret stored as an S3 object.
type S3 struct {
	client S3Client
	bucket string
	key    string
	opts   options
	snap   snapshot
}

// NewS3 loads the object once. A missing bucket or key fails with
// ErrSecretUnavailable.
func NewS3(ctx context.Context, cfg S3Config, opts ...Option) (*S3, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, ErrInvalidConfig
	}

	o := applyOptions(opts)

	client := o.s3.client
	if client == nil {
		if cfg.Region == "" {
			return nil, ErrInvalidConfig
		}

		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		awsOptions = append(awsOptions, o.s3.configOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	p := &S3{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		opts:   o,
	}
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *S3) ProvideSecret() string {
	return p.snap.load()
}

// Refresh downloads the object again. On failure the previous secret is kept.
func (p *S3) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout)
	defer cancel()

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		return errors.Join(ErrSecretUnavailable, classifyS3Error(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxSecretSize+1))
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}
	if len(data) > maxSecretSize {
		return errors.Join(ErrSecretUnavailable, ErrSecretTooLarge)
	}

	value, err := p.opts.normalize(string(data))
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}

	p.snap.store(value)
	return nil
}

func classifyS3Error(err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("s3 object not found: %w", err)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("s3 bucket not found: %w", err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("s3 object not found: %w", err)
		case "AccessDenied":
			return fmt.Errorf("s3 access denied: %w", err)
		default:
			return fmt.Errorf("s3 get object failed (code: %s): %w", apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("s3 get object failed: %w", err)
}
