package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
)

func reactRequest(t *testing.T, targetType, targetID, kind string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"targetType":   targetType,
		"targetId":     targetID,
		"reactionType": kind,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/reactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestReactToTargetToggle(t *testing.T) {
	db := setupHandlerDB(t)
	author := createHandlerUser(t, db, "author", models.RoleUser)
	reactor := createHandlerUser(t, db, "reactor", models.RoleUser)

	post := models.Post{AuthorID: author.ID, Content: "hello"}
	require.NoError(t, db.Create(&post).Error)

	r := gin.New()
	r.POST("/reactions", func(c *gin.Context) {
		c.Set("userId", reactor.ID)
		ReactToTarget(c)
	})

	do := func(targetID, kind string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, reactRequest(t, string(models.ReactionTargetPost), targetID, kind))
		return w
	}

	w := do(post.ID, "like")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":true`)

	// A different kind updates in place; still exactly one row.
	w = do(post.ID, "love")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":true`)

	var n int64
	db.Model(&models.Reaction{}).Count(&n)
	assert.EqualValues(t, 1, n)

	// The same kind toggles the row away.
	w = do(post.ID, "love")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":false`)
	db.Model(&models.Reaction{}).Count(&n)
	assert.Zero(t, n)

	// A missing target is 404, never a silent insert.
	w = do("no-such-post", "like")
	assert.Equal(t, http.StatusNotFound, w.Code)
	db.Model(&models.Reaction{}).Count(&n)
	assert.Zero(t, n)
}
