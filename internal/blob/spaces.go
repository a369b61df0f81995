package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Store - хранилище загружаемых изображений.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectAPI - часть клиента S3, которой пользуется SpacesStore.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// SpacesConfig - параметры подключения к DigitalOcean Spaces.
type SpacesConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// SpacesStore - реализация Store поверх S3-совместимого API.
type SpacesStore struct {
	Client   ObjectAPI
	Bucket   string
	Endpoint string
}

// NewSpacesStore создаёт новый экземпляр SpacesStore.
func NewSpacesStore(client ObjectAPI, bucket, endpoint string) *SpacesStore {
	return &SpacesStore{
		Client:   client,
		Bucket:   bucket,
		Endpoint: strings.TrimRight(endpoint, "/"),
	}
}

// NewSpacesClient создает клиент S3 для Spaces со статическими ключами.
func NewSpacesClient(ctx context.Context, cfg SpacesConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load spaces config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload кладет объект с публичным доступом и возвращает его URL.
func (s *SpacesStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete удаляет объект по ключу.
func (s *SpacesStore) Delete(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// URL возвращает публичный адрес объекта.
func (s *SpacesStore) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.Endpoint, s.Bucket, key)
}
