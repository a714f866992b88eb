package chat

import (
	"strings"

	"github.com/pkg/errors"
)

// MediaKind is the closed set of attachment kinds. Free-form strings from
// clients are validated at the boundary via ParseMediaKind.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaFile  MediaKind = "file"
)

func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(s))) {
	case MediaImage:
		return MediaImage, nil
	case MediaVideo:
		return MediaVideo, nil
	case MediaFile:
		return MediaFile, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown media kind %q", s)
}

var allowedMIMEs = map[MediaKind]map[string]bool{
	MediaImage: {
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	MediaVideo: {
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
	},
	// Generic files: anything except executables-by-extension, enforced at
	// the upload handler. MIME stays open here.
}

var maxSizeBytes = map[MediaKind]int64{
	MediaImage: 10 << 20,  // 10 MiB
	MediaVideo: 100 << 20, // 100 MiB
	MediaFile:  25 << 20,  // 25 MiB
}

// AllowsMIME reports whether the MIME type is acceptable for this kind.
func (k MediaKind) AllowsMIME(mime string) bool {
	if k == MediaFile {
		return mime != ""
	}
	return allowedMIMEs[k][strings.ToLower(mime)]
}

func (k MediaKind) MaxSizeBytes() int64 {
	return maxSizeBytes[k]
}

// MediaDescriptor is what the upload service hands back and the only media
// state the engine stores.
type MediaDescriptor struct {
	URL       string    `json:"url"`
	Kind      MediaKind `json:"kind"`
	MimeType  string    `json:"mimeType"`
	FileName  string    `json:"fileName"`
	SizeBytes int64     `json:"fileSizeBytes"`
}

func (m *MediaDescriptor) Validate() error {
	if m.URL == "" {
		return errors.Wrap(ErrInvalidInput, "media url is required")
	}
	if _, err := ParseMediaKind(string(m.Kind)); err != nil {
		return err
	}
	if !m.Kind.AllowsMIME(m.MimeType) {
		return errors.Wrapf(ErrInvalidInput, "mime type %q not allowed for %s", m.MimeType, m.Kind)
	}
	if m.SizeBytes > m.Kind.MaxSizeBytes() {
		return errors.Wrapf(ErrInvalidInput, "%s exceeds %d bytes", m.Kind, m.Kind.MaxSizeBytes())
	}
	return nil
}

// summaryRuneBudget caps conversation-list previews.
const summaryRuneBudget = 60

// SummaryLabel renders the conversation-list preview for a media-only
// message.
func SummaryLabel(kind MediaKind, fileName string) string {
	switch kind {
	case MediaImage:
		return "[Image]"
	case MediaVideo:
		return "[Video]"
	default:
		if fileName != "" {
			return TruncateSummary(fileName)
		}
		return "[File]"
	}
}

// TruncateSummary trims text to the preview budget, rune-safe, with an
// ellipsis marker.
func TruncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryRuneBudget {
		return s
	}
	return string(runes[:summaryRuneBudget]) + "..."
}
