package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
)

// Engine failures travel as AppErrors through the error middleware, which
// owns the HTTP rendering.
func TestChatErrorsMapThroughErrorMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not friends", chat.ErrNotFriends, http.StatusForbidden, "Users must follow each other to chat"},
		{"blocked", chat.ErrBlocked, http.StatusForbidden, "Messaging is not available between these users"},
		{"not participant", chat.ErrUnauthorized, http.StatusForbidden, "Not a participant of this conversation"},
		{"not found", chat.ErrNotFound, http.StatusNotFound, "Not found"},
		{"invalid input", chat.ErrInvalidInput, http.StatusBadRequest, "Invalid request"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ErrorHandlerMiddleware())
			r.GET("/fail", func(c *gin.Context) {
				respondChatError(c, tc.err)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}
