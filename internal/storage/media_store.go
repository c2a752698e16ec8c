package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/estia/marketplace-service/internal/utils"
)

// MediaStore uploads listing images to a MinIO bucket and returns stable
// public URLs for storage on the property record.
type MediaStore struct {
	client *minio.Client
	bucket string
}

func NewMediaStore(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MediaStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(context.Background(), bucketName)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucketName, err, existsErr)
		}
	}

	utils.Logger.Infof("MediaStore ready, bucket=%s endpoint=%s", bucketName, endpoint)
	return &MediaStore{client: client, bucket: bucketName}, nil
}

// Upload stores the image under a generated key, keeping the original
// extension, and returns its public URL.
func (s *MediaStore) Upload(ctx context.Context, originalFileName string, data []byte, contentType string) (string, error) {
	ext := filepath.Ext(originalFileName)
	objectKey := fmt.Sprintf("listings/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey), nil
}
