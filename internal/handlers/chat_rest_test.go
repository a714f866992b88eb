package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
)

func TestOpenConversationRejectsMalformedUserID(t *testing.T) {
	db := setupHandlerDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	InitChatEngine(ctx, db, nil)

	user := createHandlerUser(t, db, "opener", models.RoleUser)
	r := gin.New()
	r.POST("/conversations", func(c *gin.Context) {
		c.Set("userId", user.ID)
		OpenConversation(c)
	})

	for _, payload := range []string{
		`{"userId":"not-a-uuid"}`,
		`{"userId":""}`,
		`{}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewReader([]byte(payload)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %s", payload)
	}
}
