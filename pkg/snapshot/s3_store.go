package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
)

// ObjectAPI is the part of the S3 client an S3Store uses
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates a bucket on S3 or an S3 compatible service such as
// Cloudflare R2 or MinIO
type S3Config struct {
	Bucket string
	// Prefix is prepended to every object key
	Prefix string
	Region string
	// Endpoint overrides the AWS endpoint and switches to path-style
	// addressing
	Endpoint string
	// Static credentials. When empty the default AWS credential chain is
	// used.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from cfg
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store keeps one object per key in a bucket
type S3Store struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewS3Store creates a store over an existing client
func NewS3Store(client ObjectAPI, bucket, prefix string) (*S3Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// Name implements Store
func (s *S3Store) Name() string {
	return "s3"
}

// ObjectKey returns the object a key is stored in
func (s *S3Store) ObjectKey(key Key) string {
	return path.Join(s.prefix, fileName(key))
}

// Get implements Store
func (s *S3Store) Get(ctx context.Context, key Key) (*asgraph.Graph, error) {
	if err := checkKey(key); err != nil {
		return nil, s.wrap("get", key, err)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, s.wrap("get", key, ErrNotFound)
		}
		return nil, s.wrap("get", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, s.wrap("get", key, fmt.Errorf("failed to read object: %w", err))
	}

	g, err := Decode(data)
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	if err := checkGraph(key, g); err != nil {
		return nil, s.wrap("get", key, err)
	}
	return g, nil
}

// Put implements Store. S3 object writes are atomic, so readers never see
// a partial snapshot.
func (s *S3Store) Put(ctx context.Context, key Key, g *asgraph.Graph) error {
	if err := checkKey(key); err != nil {
		return s.wrap("put", key, err)
	}

	data, err := Encode(g)
	if err != nil {
		return s.wrap("put", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.ObjectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return s.wrap("put", key, err)
	}
	return nil
}

func (s *S3Store) wrap(op string, key Key, err error) error {
	return &Error{Op: op, Backend: s.Name(), Key: key, Cause: err}
}

// isNoSuchKey recognizes a missing object. Some S3 compatible services
// answer a plain 404 instead of NoSuchKey.
func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
