package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/AnyUserName/fotosync/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store writes objects into a bucket. The revision token is the ETag.
// S3 has no conditional put here, so Put re-stats the key and refuses to
// write over a revision it was not given.
type S3Store struct {
	client        *minio.Client
	bucket        string
	prefix        string
	publicBaseURL string
}

func NewS3Store(cfg config.S3Config, baseFolder string) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Region: cfg.Region,
		Secure: cfg.UseSSL,
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(baseFolder, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *S3Store) Name() string { return "s3:" + s.bucket }

func (s *S3Store) key(p string) string {
	return path.Join(s.prefix, p)
}

func isNoSuchKey(err error) bool {
	var merr minio.ErrorResponse
	if errors.As(err, &merr) {
		return merr.Code == "NoSuchKey" || merr.StatusCode == http.StatusNotFound
	}
	return false
}

func (s *S3Store) Stat(ctx context.Context, p string) (Object, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(p), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return Object{}, nil
		}
		return Object{}, err
	}
	return Object{Exists: true, Revision: info.ETag}, nil
}

// checkRevision refuses a write whose revision does not describe the
// object as it is now: a create over an existing object, an update of a
// missing one, or an update with a stale ETag.
func checkRevision(path string, current Object, revision string) error {
	if current.Exists == (revision != "") && current.Revision == revision {
		return nil
	}
	return &PublishError{
		Path:   path,
		Status: http.StatusPreconditionFailed,
		Body:   fmt.Sprintf("revision %q does not match %q", revision, current.Revision),
	}
}

func (s *S3Store) Put(ctx context.Context, r PutRequest) error {
	current, err := s.Stat(ctx, r.Path)
	if err != nil {
		return err
	}
	if err := checkRevision(r.Path, current, r.Revision); err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.key(r.Path), bytes.NewReader(r.Content), int64(len(r.Content)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(r.Content)})
	if err != nil {
		var merr minio.ErrorResponse
		if errors.As(err, &merr) {
			return &PublishError{Path: r.Path, Status: merr.StatusCode, Body: merr.Message}
		}
		return err
	}
	return nil
}

// PublicURL prefers the configured public base and falls back to the
// path-style endpoint URL.
func (s *S3Store) PublicURL(p string) string {
	escaped := (&url.URL{Path: s.key(p)}).EscapedPath()
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, escaped)
}
