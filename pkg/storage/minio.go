package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Stored document URLs look like
// /storage/v1/object/public/<bucket>/<path...>; the leading segments are
// fixed and carry no information beyond the bucket, which for procurement
// documents always matches the procurement id.
const objectPathSkipSegments = 5

// Config contains credentials required to talk to the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Document is one downloaded binary document plus its media type.
type Document struct {
	Data      []byte
	MediaType string
}

// Service implements document downloads against a MinIO-compatible store.
type Service struct {
	client *minio.Client
	logger zerolog.Logger
}

// New constructs an object store client.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object store credentials must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Service{
		client: client,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// Download fetches one object and resolves its media type. PDF paths always
// map to application/pdf; otherwise the stored content type wins, with
// content sniffing as a last resort.
func (s *Service) Download(ctx context.Context, bucket, path string) (Document, error) {
	object, err := s.client.GetObject(ctx, bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch %s/%s: %w", bucket, path, err)
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat %s/%s: %w", bucket, path, err)
	}

	data, err := io.ReadAll(object)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s/%s: %w", bucket, path, err)
	}

	mediaType := info.ContentType
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".pdf"):
		mediaType = "application/pdf"
	case mediaType == "" || mediaType == "application/octet-stream":
		mediaType = mimetype.Detect(data).String()
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("path", path).
		Str("media_type", mediaType).
		Int("bytes", len(data)).
		Msg("document downloaded")

	return Document{Data: data, MediaType: mediaType}, nil
}

// ResolveDocumentURL derives the bucket and object path from a stored
// document URL. The bucket is the procurement id; the object path is the URL
// path with the fixed leading segments stripped.
func ResolveDocumentURL(rawURL, procurementID string) (bucket, path string, err error) {
	if procurementID == "" {
		return "", "", fmt.Errorf("procurement id is required to resolve document location")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid document URL format: %s: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", "", fmt.Errorf("invalid document URL format: %s: unsupported scheme %q", rawURL, parsed.Scheme)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) <= objectPathSkipSegments {
		return "", "", fmt.Errorf("invalid document URL format: %s: too few path segments", rawURL)
	}

	path = strings.Join(segments[objectPathSkipSegments:], "/")
	if path == "" {
		return "", "", fmt.Errorf("invalid document URL format: %s: empty object path", rawURL)
	}

	return procurementID, path, nil
}
