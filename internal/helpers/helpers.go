package helpers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder = "avatars"
	EventsFolder = "events"
)

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	numberRe  = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[@$!%*?&]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		numberRe.MatchString(password) &&
		specialRe.MatchString(password)
}

// StringTrim trims whitespace and surrounding quotes, which clients sometimes
// send around path parameters.
func StringTrim(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'")
}

// SplitList parses a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ImageUploader stores an image (URL, file path or data URI) and returns its
// public URL.
type ImageUploader interface {
	Upload(ctx context.Context, source, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, source, folder string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", fmt.Errorf("image source is empty")
	}
	res, err := u.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder: folder,
		Tags:   []string{"eventhub"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("image storage returned no URL")
	}
	return res.SecureURL, nil
}

// PassthroughUploader keeps the client supplied reference as-is. Used when no
// image storage is configured.
type PassthroughUploader struct{}

func (PassthroughUploader) Upload(_ context.Context, source, _ string) (string, error) {
	return strings.TrimSpace(source), nil
}
