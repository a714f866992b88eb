package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/LucHocIT/Social-media-app-sub000/internal/config"
)

// Maximum URL length to prevent abuse
const maxMediaURLLength = 2048

// hosts media may be served from besides our own storage
var allowedMediaHosts = []string{
	"r2.dev",
	"r2.cloudflarestorage.com",
	"imagedelivery.net",
	"res.cloudinary.com",
}

// ValidateMediaURL checks that an attachment URL is HTTPS and served from
// our storage or a known CDN. Anything else is rejected before it reaches
// the engine.
func ValidateMediaURL(mediaURL string) error {
	if len(mediaURL) > maxMediaURLLength {
		return errors.New("media URL too long")
	}

	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return errors.New("media URL cannot be empty")
	}

	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return errors.New("invalid media URL format")
	}
	if parsed.Scheme != "https" {
		return errors.New("only HTTPS media URLs are allowed")
	}

	lowerURL := strings.ToLower(mediaURL)
	if strings.Contains(lowerURL, "<script") || strings.Contains(lowerURL, "onerror=") {
		return errors.New("unsafe media URL detected")
	}

	if isOwnStorageHost(parsed.Host) {
		return nil
	}
	for _, allowed := range allowedMediaHosts {
		if parsed.Host == allowed || strings.HasSuffix(parsed.Host, "."+allowed) {
			return nil
		}
	}
	return errors.New("media host not allowed")
}

func isOwnStorageHost(host string) bool {
	cfg := config.AppConfig
	if cfg == nil || cfg.R2PublicURL == "" {
		return false
	}
	public, err := url.Parse(cfg.R2PublicURL)
	if err != nil {
		return false
	}
	return host == public.Host
}
