// Package storage uploads images to S3-compatible object storage. Callers
// hand it either a base64 data URI (as produced by browser file pickers) or
// an already-hosted http(s) URL, and get back the public URL of the stored
// object.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/user/entreflow-go/config"
)

// Uploader stores one image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, image string) (string, error)
}

// s3Client is the subset of the S3 API the uploader uses; narrowed for tests.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader implements Uploader against S3 or an S3-compatible endpoint.
type S3Uploader struct {
	client        s3Client
	bucket        string
	publicBaseURL string
}

// NewS3Uploader builds the S3 client from configuration. A custom endpoint
// (minio, localstack) is honored when set.
func NewS3Uploader(ctx context.Context, cfg *config.StorageConfig) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores the image under a random key and returns its public URL.
// Plain http(s) URLs pass through untouched: the asset is already hosted.
func (u *S3Uploader) Upload(ctx context.Context, image string) (string, error) {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image, nil
	}

	data, contentType, err := decodeDataURI(image)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), extensionFor(contentType))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return u.publicBaseURL + "/" + key, nil
}

// decodeDataURI splits a "data:<type>;base64,<payload>" string into raw
// bytes and content type. Bare base64 without the prefix is accepted too.
func decodeDataURI(image string) ([]byte, string, error) {
	contentType := "application/octet-stream"
	payload := image

	if strings.HasPrefix(image, "data:") {
		rest := image[len("data:"):]
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("unsupported data URI: missing base64 payload")
		}
		if ct := rest[:semi]; ct != "" {
			contentType = ct
		}
		payload = rest[semi+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
