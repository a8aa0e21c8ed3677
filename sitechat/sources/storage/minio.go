package storage

import (
	"bytes"
	"context"
	"crypto/md5" // For simple URL hashing
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"sitechat/sitechat/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

type ScrapeObject struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"extracted_text"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOSecure,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinIOClient{client: client, bucket: bucket, ttl: cfg.CacheTTL, now: time.Now}, nil
}

// ScrapeKey hashes the URL so the object name carries no special characters.
func ScrapeKey(url string) string {
	return path.Join("scrapes", fmt.Sprintf("%x.json", md5.Sum([]byte(url))))
}

// Store uploads extracted page text under the URL's key.
func (m *MinIOClient) Store(ctx context.Context, url, title, text string) error {
	obj := ScrapeObject{
		URL:       url,
		Title:     title,
		Text:      text,
		Timestamp: m.now(),
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, ScrapeKey(url), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// Lookup returns a cached scrape. Missing, unreadable and expired objects are all misses.
func (m *MinIOClient) Lookup(ctx context.Context, url string) (title, text string, ok bool, err error) {
	obj, err := m.client.GetObject(ctx, m.bucket, ScrapeKey(url), minio.GetObjectOptions{})
	if err != nil {
		return "", "", false, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	return decodeScrape(data, url, m.ttl, m.now())
}

func decodeScrape(data []byte, url string, ttl time.Duration, now time.Time) (string, string, bool, error) {
	var obj ScrapeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", "", false, nil
	}
	if obj.URL != url {
		return "", "", false, nil
	}
	if ttl > 0 && now.Sub(obj.Timestamp) > ttl {
		return "", "", false, nil
	}
	return obj.Title, obj.Text, true, nil
}
