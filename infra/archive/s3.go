package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kilianp07/evroute/core/factory"
	"github.com/kilianp07/evroute/core/monitoring"
	"github.com/kilianp07/evroute/core/notify"
)

// S3Config configures the bucket archive. Endpoint targets S3 compatible
// stores such as MinIO and switches to path style addressing.
type S3Config struct {
	Bucket   string `json:"bucket"`
	Prefix   string `json:"prefix"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"`
}

// objectPutter is the subset of the S3 client used by the archive.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores each plan message as one JSON object.
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
}

func init() {
	_ = notify.RegisterPublisher("s3", func(conf map[string]any) (notify.Publisher, error) {
		var c S3Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewS3Archive(context.Background(), c)
	})
}

// NewS3Archive loads the default AWS credential chain.
func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 archive: bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Archive(client, cfg), nil
}

func newS3Archive(client objectPutter, cfg S3Config) *S3Archive {
	return &S3Archive{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}
}

// Key returns the object key of msg: <prefix>/YYYY/MM/DD/<plan id>.json.
func (a *S3Archive) Key(msg notify.PlanMessage) string {
	day := msg.CreatedAt.UTC().Format("2006/01/02")
	return path.Join(a.prefix, day, msg.PlanID+".json")
}

// Publish uploads msg.
func (a *S3Archive) Publish(ctx context.Context, msg notify.PlanMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(msg)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		err = fmt.Errorf("unable to upload plan to S3: %w", err)
		monitoring.CaptureException(err, map[string]string{"module": "s3", "plan_id": msg.PlanID})
		return err
	}
	return nil
}

func (a *S3Archive) Close() error { return nil }
