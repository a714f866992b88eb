package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
)

func TestParseMediaKind(t *testing.T) {
	kind, err := chat.ParseMediaKind(" Image ")
	assert.NoError(t, err)
	assert.Equal(t, chat.MediaImage, kind)

	_, err = chat.ParseMediaKind("gif")
	assert.ErrorIs(t, err, chat.ErrInvalidInput)
}

func TestMediaKindAllowsMIME(t *testing.T) {
	assert.True(t, chat.MediaImage.AllowsMIME("image/png"))
	assert.True(t, chat.MediaImage.AllowsMIME("IMAGE/PNG"))
	assert.False(t, chat.MediaImage.AllowsMIME("image/tiff"))
	assert.False(t, chat.MediaVideo.AllowsMIME("image/png"))

	// Generic files accept any declared type but not a missing one.
	assert.True(t, chat.MediaFile.AllowsMIME("application/pdf"))
	assert.False(t, chat.MediaFile.AllowsMIME(""))
}

func TestMediaDescriptorValidate(t *testing.T) {
	valid := chat.MediaDescriptor{
		URL:       "https://cdn.example.com/v.mp4",
		Kind:      chat.MediaVideo,
		MimeType:  "video/mp4",
		SizeBytes: 50 << 20,
	}
	assert.NoError(t, valid.Validate())

	missingURL := valid
	missingURL.URL = ""
	assert.ErrorIs(t, missingURL.Validate(), chat.ErrInvalidInput)

	tooBig := valid
	tooBig.SizeBytes = 101 << 20
	assert.ErrorIs(t, tooBig.Validate(), chat.ErrInvalidInput)

	wrongMIME := valid
	wrongMIME.MimeType = "audio/mpeg"
	assert.ErrorIs(t, wrongMIME.Validate(), chat.ErrInvalidInput)
}

func TestSummaryLabel(t *testing.T) {
	assert.Equal(t, "[Image]", chat.SummaryLabel(chat.MediaImage, "photo.png"))
	assert.Equal(t, "[Video]", chat.SummaryLabel(chat.MediaVideo, ""))
	assert.Equal(t, "report.pdf", chat.SummaryLabel(chat.MediaFile, "report.pdf"))
	assert.Equal(t, "[File]", chat.SummaryLabel(chat.MediaFile, ""))
}

func TestTruncateSummaryRuneSafe(t *testing.T) {
	short := "no change"
	assert.Equal(t, short, chat.TruncateSummary(short))

	long := ""
	for i := 0; i < 80; i++ {
		long += "ü"
	}
	out := chat.TruncateSummary(long)
	runes := []rune(out)
	assert.Len(t, runes, 63)
	assert.Equal(t, "...", string(runes[60:]))
}
