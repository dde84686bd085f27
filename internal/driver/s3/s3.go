package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/kerraform/kota/internal/driver"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const contentTypeJSON = "application/json"

type DriverOpts struct {
	AccessKey    string
	Bucket       string
	Endpoint     string
	Region       string
	SecretKey    string
	UsePathStyle bool
	Tracer       trace.Tracer
}

type endpointResolver struct {
	URL string
}

func (r *endpointResolver) ResolveEndpoint(service, region string, options ...interface{}) (aws.Endpoint, error) {
	return aws.Endpoint{
		URL:           r.URL,
		SigningRegion: region,
	}, nil
}

type s3Driver struct {
	bucket   string
	logger   *zap.Logger
	s3       *s3.Client
	tracer   trace.Tracer
	uploader *manager.Uploader
}

var _ driver.Driver = (*s3Driver)(nil)

func NewDriver(logger *zap.Logger, opts *DriverOpts) (driver.Driver, error) {
	if opts == nil {
		return nil, fmt.Errorf("invalid s3 credentials")
	}

	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}

	if opts.AccessKey != "" {
		cred := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""))
		loadOpts = append(loadOpts, config.WithCredentialsProvider(cred))
	}

	if opts.Endpoint != "" {
		endpointResolver := &endpointResolver{
			URL: opts.Endpoint,
		}
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(endpointResolver))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
	})

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &s3Driver{
		bucket:   opts.Bucket,
		logger:   logger,
		s3:       s3Client,
		tracer:   tracer,
		uploader: manager.NewUploader(s3Client),
	}, nil
}

func (d *s3Driver) GetSnapshot(ctx context.Context, digest string) (io.ReadCloser, error) {
	ctx, span := d.tracer.Start(ctx, "GetSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("digest", digest))

	key, err := driver.SnapshotKey(digest)
	if err != nil {
		return nil, err
	}

	out, err := d.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, handleError(err, driver.ErrSnapshotNotExist)
	}

	return out.Body, nil
}

func (d *s3Driver) ListSnapshots(ctx context.Context) ([]string, error) {
	ctx, span := d.tracer.Start(ctx, "ListSnapshots")
	defer span.End()

	p := s3.NewListObjectsV2Paginator(d.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.bucket),
		Prefix: aws.String(driver.SnapshotRootPath + "/"),
	})

	digests := []string{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			digest, ok := driver.DigestFromKey(aws.ToString(obj.Key))
			if !ok {
				d.logger.Debug("skip object in snapshot prefix", zap.String("key", aws.ToString(obj.Key)))
				continue
			}
			digests = append(digests, digest)
		}
	}

	sort.Strings(digests)
	d.logger.Debug("found snapshots", zap.String("bucket", d.bucket), zap.Int("count", len(digests)))
	return digests, nil
}

func (d *s3Driver) SaveSnapshot(ctx context.Context, digest string, body io.Reader) error {
	ctx, span := d.tracer.Start(ctx, "SaveSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("digest", digest))

	key, err := driver.SnapshotKey(digest)
	if err != nil {
		return err
	}

	if _, err := d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentTypeJSON),
	}); err != nil {
		return err
	}

	d.logger.Debug("saved snapshot", zap.String("bucket", d.bucket), zap.String("key", key))
	return nil
}

func handleError(err error, rerr error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return rerr
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return rerr
		}
	}

	return err
}
