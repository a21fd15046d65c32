package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/phillip/evently-go/config"
)

var ErrImagesDisabled = errors.New("image uploads are not configured")

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// ImageStore keeps event images in a Cloudinary folder.
type ImageStore struct {
	api    uploadAPI
	folder string
}

// NewImageStore returns nil when Cloudinary credentials are absent; a nil
// store rejects uploads and ignores deletes.
func NewImageStore(cfg config.CloudinaryConfig) (*ImageStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &ImageStore{api: &cld.Upload, folder: cfg.Folder}, nil
}

// Upload stores the image and returns its secure URL.
func (s *ImageStore) Upload(ctx context.Context, file io.Reader) (string, error) {
	if s == nil {
		return "", ErrImagesDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.api.Upload(ctx, file, uploader.UploadParams{
		Folder: s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete removes an image previously returned by Upload. URLs that do not
// point at Cloudinary are ignored.
func (s *ImageStore) Delete(ctx context.Context, imageURL string) error {
	if s == nil || imageURL == "" {
		return nil
	}
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// extractPublicID turns
// https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
// into events/abc123.
func extractPublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	upload := -1
	for i, p := range parts {
		if p == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload == len(parts)-1 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[upload+1:]
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}
	last := rest[len(rest)-1]
	rest[len(rest)-1] = strings.TrimSuffix(last, path.Ext(last))
	return path.Join(rest...), nil
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
