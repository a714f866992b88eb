package services_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/internal/services"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	os.Exit(m.Run())
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.UserLink{}, &models.UserBlock{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Password:    "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestAreFriendsNeedsBothDirections(t *testing.T) {
	db := setupDB(t)
	rel := services.NewRelationships(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	friends, err := rel.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	require.NoError(t, db.Create(&models.UserLink{FollowerID: alice.ID, FollowedID: bob.ID}).Error)
	friends, err = rel.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends, "a one-way follow is not a friendship")

	require.NoError(t, db.Create(&models.UserLink{FollowerID: bob.ID, FollowedID: alice.ID}).Error)
	friends, err = rel.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, friends)

	// Symmetric.
	friends, err = rel.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, friends)
}

func TestAreBlockingEitherDirection(t *testing.T) {
	db := setupDB(t)
	rel := services.NewRelationships(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	blocking, err := rel.AreBlocking(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, blocking)

	require.NoError(t, db.Create(&models.UserBlock{BlockerID: bob.ID, BlockedID: alice.ID}).Error)

	blocking, err = rel.AreBlocking(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocking, "the blocked side is denied too")
}

func TestUsersDirectory(t *testing.T) {
	db := setupDB(t)
	users := services.NewUsers(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")

	exists, err := users.Exists(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = users.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)

	info, err := users.DisplayInfo(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.DisplayName)

	_, err = users.DisplayInfo(ctx, "nope")
	assert.ErrorIs(t, err, chat.ErrNotFound)

	users.TouchLastActive(ctx, alice.ID)
	info, err = users.DisplayInfo(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, info.LastActiveAt)
}

func TestIsDeletedAfterSoftDelete(t *testing.T) {
	db := setupDB(t)
	users := services.NewUsers(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	require.NoError(t, db.Delete(&models.User{}, "id = ?", alice.ID).Error)

	deleted, err := users.IsDeleted(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = users.IsDeleted(ctx, "never-existed")
	require.NoError(t, err)
	assert.False(t, deleted)
}
