// Package s3 处理对象存储操作，文件字节流的落盘与读取.
package s3

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/oklog/ulid"

	"github.com/yeisme/uplink/pkg/configs"
	nlog "github.com/yeisme/uplink/pkg/log"
)

// ulidEntropy 对象名生成的单调熵源，MonotonicEntropy 非并发安全，用锁串行化.
var (
	ulidEntropy   = ulid.Monotonic(crand.Reader, 0)
	ulidEntropyMu sync.Mutex
)

// Client 包装 MinIO 客户端.
type Client struct {
	*minio.Client

	bucket string
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().S3
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("uplink", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &Client{Client: cli, bucket: cfg.BucketName}, nil
}

// NewObjectName 生成物理存储名，ULID 保证可排序且不冲突，保留原始扩展名.
func NewObjectName(ext string) string {
	ulidEntropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy)
	ulidEntropyMu.Unlock()

	name := id.String()
	if ext != "" {
		name = name + "." + strings.TrimPrefix(ext, ".")
	}

	return strings.ToLower(name)
}

// SaveStream 把字节流写入对象存储，size 未知时传 -1.
func (c *Client) SaveStream(ctx context.Context, objectName string, r io.Reader, size int64) (int64, error) {
	info, err := c.PutObject(ctx, c.bucket, objectName, r, size, minio.PutObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("put object %s: %w", objectName, err)
	}

	return info.Size, nil
}

// OpenForRead 打开对象读取流，调用方负责 Close.
func (c *Client) OpenForRead(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", objectName, err)
	}

	// GetObject 是惰性的，Stat 一次把 NoSuchKey 提前暴露出来
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()

		return nil, fmt.Errorf("stat object %s: %w", objectName, err)
	}

	return obj, nil
}

// Remove 删除对象.
func (c *Client) Remove(ctx context.Context, objectName string) error {
	if err := c.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", objectName, err)
	}

	return nil
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.ListBuckets(ctx)

	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

// Bucket 返回当前使用的桶名.
func (c *Client) Bucket() string {
	return c.bucket
}
