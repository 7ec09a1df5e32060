package utils

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"injuryshield/internal/config"
)

func NewMinioClient(conf config.S3Config) (*minio.Client, error) {
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}
	cli, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return cli, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, minioCli *minio.Client, bucket, region string) error {
	exists, err := minioCli.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket failed: %w", err)
	}
	if exists {
		return nil
	}
	if err := minioCli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket failed: %w", err)
	}
	return nil
}

// ObjectPath lays objects out as /<kind>/<camera>/<yyyy>/<mm>/<dd>/<name>.
func ObjectPath(kind, camera string, ts time.Time, name string) string {
	ts = ts.UTC()
	return fmt.Sprintf("/%s/%s/%04d/%02d/%02d/%s", kind, camera, ts.Year(), ts.Month(), ts.Day(), name)
}

func contentTypeOf(localPath string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(localPath), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func UploadFileToMinio(ctx context.Context, minioCli *minio.Client, bucket, localPath, minioPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file failed: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("get file info failed: %w", err)
	}

	_, err = minioCli.PutObject(
		ctx,
		bucket,
		strings.TrimPrefix(minioPath, "/"),
		file,
		fileInfo.Size(),
		minio.PutObjectOptions{
			ContentType: contentTypeOf(localPath),
		},
	)
	if err != nil {
		return fmt.Errorf("put object to minio failed: %w", err)
	}

	return nil
}
