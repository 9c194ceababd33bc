package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/config"
)

// Uploader ships a finished export directory to remote storage.
type Uploader interface {
	// Preflight verifies the destination is writable before any report
	// data moves.
	Preflight(ctx context.Context) error

	// Upload ships the manifest and the files it declares from one
	// export directory. The directory basename becomes a sub-prefix
	// under the configured remote prefix.
	Upload(ctx context.Context, dir string) error
}

// s3Uploader implements Uploader for S3-compatible storage.
type s3Uploader struct {
	log    logrus.FieldLogger
	cfg    *config.S3UploadConfig
	client *s3.Client
}

var _ Uploader = (*s3Uploader)(nil)

// NewS3Uploader creates an S3 uploader from the given configuration.
func NewS3Uploader(
	log logrus.FieldLogger,
	cfg *config.S3UploadConfig,
) (Uploader, error) {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.Region != "" {
				o.Region = cfg.Region
			} else {
				o.Region = "us-east-1"
			}

			if cfg.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.EndpointURL)
			}

			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}

			if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretAccessKey, "",
				)
			}
		},
	}

	client := s3.New(s3.Options{}, opts...)

	return &s3Uploader{
		log:    log.WithField("component", "s3-uploader"),
		cfg:    cfg,
		client: client,
	}, nil
}

// Preflight writes a timestamp marker under the export prefix. Keeping the
// marker inside the prefix means a bucket policy scoped to it still passes
// its own check.
func (u *s3Uploader) Preflight(ctx context.Context) error {
	key := u.keyPrefix() + "/.write-check"
	body := strings.NewReader(time.Now().UTC().Format(time.RFC3339))

	if err := u.put(ctx, key, body, "text/plain"); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	return nil
}

// Upload ships the manifest plus every file it declares. Only the declared
// set moves; a declared file missing on disk means the directory is not a
// complete export and nothing is uploaded.
func (u *s3Uploader) Upload(ctx context.Context, dir string) error {
	m, err := ReadManifest(dir)
	if err != nil {
		return err
	}

	base := u.keyPrefix() + "/" + filepath.Base(dir)

	names := make([]string, 0, len(m.Files)+1)
	names = append(names, ManifestName)
	names = append(names, m.Files...)

	// Check the whole declared set up front so an incomplete directory
	// ships nothing at all.
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("missing report file %s: %w", name, err)
		}
	}

	for _, name := range names {
		if err := u.uploadReportFile(ctx, dir, base, name); err != nil {
			return err
		}
	}

	u.log.WithFields(logrus.Fields{
		"files":  len(names),
		"bucket": u.cfg.Bucket,
		"prefix": base,
	}).Info("Report uploaded")

	return nil
}

func (u *s3Uploader) uploadReportFile(
	ctx context.Context, dir, base, name string,
) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("opening report file %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	return u.put(ctx, base+"/"+name, f, reportContentType(name))
}

func (u *s3Uploader) put(
	ctx context.Context, key string, body io.Reader, contentType string,
) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	if u.cfg.StorageClass != "" {
		input.StorageClass = s3types.StorageClass(u.cfg.StorageClass)
	}

	if u.cfg.ACL != "" {
		input.ACL = s3types.ObjectCannedACL(u.cfg.ACL)
	}

	u.log.WithField("key", key).Debug("Putting object")

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", u.cfg.Bucket, key, err)
	}

	return nil
}

func (u *s3Uploader) keyPrefix() string {
	prefix := strings.TrimRight(u.cfg.Prefix, "/")
	if prefix == "" {
		prefix = "exports"
	}

	return prefix
}

// reportContentType maps the export's file set onto MIME types.
func reportContentType(name string) string {
	switch filepath.Ext(name) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/x-yaml"
	default:
		return "application/octet-stream"
	}
}
