package services

import (
	"context"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"chorescape-server/config"
	"chorescape-server/types"
)

// Uploader pushes base64 data-URI payloads (product images, worker
// documents) to Cloudinary and returns the hosted URL.
type Uploader struct {
	cld *cloudinary.Cloudinary
}

// NewUploader builds an Uploader from CLOUDINARY_URL. A missing URL is
// not an error at startup; uploads fail with a configuration message
// instead, so deployments without media support still run.
func NewUploader(cfg *config.Config) (*Uploader, error) {
	if cfg.Cloudinary.URL == "" {
		return &Uploader{}, nil
	}
	cld, err := cloudinary.NewFromURL(cfg.Cloudinary.URL)
	if err != nil {
		return nil, err
	}
	return &Uploader{cld: cld}, nil
}

// Upload sends a data URI (or raw base64 string) to the given folder.
func (u *Uploader) Upload(ctx context.Context, dataURI, folder string) (string, *types.AppError) {
	if u.cld == nil {
		return "", types.UpstreamUnavailable("Media uploads are not configured", nil)
	}
	if strings.TrimSpace(dataURI) == "" {
		return "", types.Validation("File data is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	overwrite := true
	unique := true
	result, err := u.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:         folder,
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "auto",
	})
	if err != nil {
		return "", types.UpstreamUnavailable("File upload failed", err)
	}
	return result.SecureURL, nil
}
