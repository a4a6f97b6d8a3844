package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yeisme/xianshiji/pkg/configs"
)

type awsStore struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	bucket  string
}

func init() {
	RegisterFactory(configs.S3TypeAWS, newAWSStore)
}

// newAWSStore 使用 AWS SDK 连接 S3 兼容端点，endpoint 为空时使用 AWS 官方地址.
func newAWSStore(ctx context.Context, cfg *configs.S3Config) (ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.GetEndpointURL())
			o.UsePathStyle = true
		}
	})

	store := &awsStore{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  cfg.BucketName,
	}

	if err := store.HealthCheck(ctx); err != nil {
		if _, cerr := client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String(cfg.BucketName)}); cerr != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.BucketName, cerr)
		}
	}

	return store, nil
}

func (a *awsStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

func (a *awsStore) Remove(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})

	return err
}

func (a *awsStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := a.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (a *awsStore) HealthCheck(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(a.bucket)})

	return err
}
