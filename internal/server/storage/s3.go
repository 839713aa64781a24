// Package storage writes uploaded objects into an S3-compatible bucket
// (AWS S3 or MinIO) and maps object keys to public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// presignExpiry bounds how long a signed PUT stays usable.
const presignExpiry = 15 * time.Minute

type Config struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	BaseEndpoint  string
	PublicBaseURL string
	UsePathStyle  bool
}

// S3Store puts and deletes objects in one bucket.
//
// Writes go through a presigned PUT sent by our own HTTP client so that the
// request body can be metered for progress reporting.
type S3Store struct {
	client     *s3.Client
	presign    *s3.PresignClient
	httpClient *http.Client
	bucket     string
	publicBase string
}

func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3Store(awsCfg, cfg, &http.Client{}), nil
}

func newS3Store(awsCfg aws.Config, cfg Config, httpClient *http.Client) *S3Store {
	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client:     client,
		presign:    s3.NewPresignClient(client),
		httpClient: httpClient,
		bucket:     cfg.Bucket,
		publicBase: publicBase(cfg),
	}
}

// publicBase returns the URL prefix, ending in "/", under which keys are
// publicly reachable.
func publicBase(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/"
	}

	endpoint := cfg.BaseEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || u.Host == "" {
		return strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket + "/"
	}
	if cfg.UsePathStyle {
		return u.String() + "/" + cfg.Bucket + "/"
	}
	u.Host = cfg.Bucket + "." + u.Host
	return u.String() + "/"
}

// Put stores size bytes from body under key. progress, when non-nil, is
// called with the running byte count as the body is consumed; it may be
// called from another goroutine.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64, progress func(done int64)) error {
	signed, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return fmt.Errorf("presign put: %w", err)
	}

	if progress != nil {
		body = &progressReader{r: body, fn: progress}
	}

	req, err := http.NewRequestWithContext(ctx, signed.Method, signed.URL, io.NopCloser(body))
	if err != nil {
		return err
	}
	for name, values := range signed.SignedHeader {
		if strings.EqualFold(name, "Host") || strings.EqualFold(name, "Content-Length") {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage put: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage put: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	return nil
}

// PublicURL returns the URL clients use to fetch key.
func (s *S3Store) PublicURL(key string) string {
	return s.publicBase + key
}

// KeyFromURL is the inverse of PublicURL. It reports false for URLs outside
// the bucket and for anything that does not look like an upload key.
func (s *S3Store) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, s.publicBase)
	if !ok || key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, "?#") {
		return "", false
	}
	return key, true
}

// NewKey returns a fresh key of the form uploads/<yyyy>/<mm>/<dd>/<uuid><ext>.
func NewKey(now time.Time, ext string) string {
	now = now.UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%s%s", now.Year(), int(now.Month()), now.Day(), uuid.New(), ext)
}

type progressReader struct {
	r  io.Reader
	n  int64
	fn func(int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.n += int64(n)
		p.fn(p.n)
	}
	return n, err
}
