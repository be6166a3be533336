package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the provider calls
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Provider stores files in an S3 bucket
type S3Provider struct {
	client     S3API
	bucketName string
	prefix     string
	baseURL    string
}

// NewS3Provider builds an S3 client from static credentials. Empty
// credentials fall back to the default AWS credential chain.
func NewS3Provider(ctx context.Context, accessKeyID, secretAccessKey, region, bucketName, prefix string) (*S3Provider, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3ProviderWithClient(s3.NewFromConfig(cfg), region, bucketName, prefix), nil
}

// NewS3ProviderWithClient wraps an existing client
func NewS3ProviderWithClient(client S3API, region, bucketName, prefix string) *S3Provider {
	return &S3Provider{
		client:     client,
		bucketName: bucketName,
		prefix:     cleanKey(prefix),
		baseURL:    fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucketName, region),
	}
}

func (p *S3Provider) objectKey(key string) string {
	key = cleanKey(key)
	if p.prefix == "" {
		return key
	}
	return p.prefix + "/" + key
}

func (p *S3Provider) Put(ctx context.Context, key, contentType string, data []byte) (*Result, error) {
	objectKey := p.objectKey(key)
	if cleanKey(key) == "" {
		return nil, fmt.Errorf("empty file key")
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &Result{Key: objectKey, URL: p.GetURL(key), Size: int64(len(data))}, nil
}

func (p *S3Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(p.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (p *S3Provider) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", p.baseURL, p.objectKey(key))
}

func (p *S3Provider) GetProviderName() string {
	return "AWS S3"
}
