package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	appConfig "github.com/LucHocIT/Social-media-app-sub000/internal/config"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

func getS3Client() (*s3.Client, error) {
	cfg := appConfig.AppConfig
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// kindFromMIME picks the attachment kind for a content type; anything that
// is not image/* or video/* goes through the generic file path.
func kindFromMIME(mime string) chat.MediaKind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return chat.MediaImage
	case strings.HasPrefix(mime, "video/"):
		return chat.MediaVideo
	default:
		return chat.MediaFile
	}
}

// UploadMedia stores an attachment in R2 and returns the media descriptor
// clients attach to messages. Type and size limits are enforced per kind
// before anything hits storage.
func UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		file, header, err = c.Request.FormFile("media")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid file field found"})
			return
		}
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	kind := kindFromMIME(mime)
	if !kind.AllowsMIME(mime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Content type %q is not allowed", mime)})
		return
	}
	if header.Size > kind.MaxSizeBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File exceeds the %d MiB limit for %s uploads", kind.MaxSizeBytes()>>20, kind),
		})
		return
	}

	ext := filepath.Ext(header.Filename)
	key := fmt.Sprintf("%s/%s%s", c.DefaultQuery("folder", "uploads"), utils.GenerateID(), ext)

	client, err := getS3Client()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to init storage client"})
		return
	}

	cfg := appConfig.AppConfig
	_, err = client.PutObject(c.Request.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(cfg.R2BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mime),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	publicURL := cfg.R2PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.R2BucketName)
	}

	c.JSON(http.StatusOK, chat.MediaDescriptor{
		URL:       fmt.Sprintf("%s/%s", publicURL, key),
		Kind:      kind,
		MimeType:  mime,
		FileName:  header.Filename,
		SizeBytes: header.Size,
	})
}

func UploadProfileImage(c *gin.Context) {
	c.Request.URL.RawQuery = "folder=profiles"
	UploadMedia(c)
}

func UploadChatAttachment(c *gin.Context) {
	c.Request.URL.RawQuery = "folder=chat"
	UploadMedia(c)
}

func UploadPostMedia(c *gin.Context) {
	c.Request.URL.RawQuery = "folder=posts"
	UploadMedia(c)
}
