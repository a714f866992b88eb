package chat_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
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

// engine bundles the pieces most tests need, backed by an isolated
// in-memory database and a nil redis client (every cache call is a miss).
type engine struct {
	db        *gorm.DB
	directory *chat.Directory
	messages  *chat.Messages
	reactions *chat.Reactions
	rel       *services.Relationships
	users     *services.Users
}

func newTestEngine(t *testing.T) *engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserLink{},
		&models.UserBlock{},
		&models.Conversation{},
		&models.Message{},
		&models.MessageReaction{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cache := chat.NewCache(nil)
	rel := services.NewRelationships(db)
	users := services.NewUsers(db)
	return &engine{
		db:        db,
		directory: chat.NewDirectory(db, rel, cache),
		messages:  chat.NewMessages(db, rel, users, cache),
		reactions: chat.NewReactions(db),
		rel:       rel,
		users:     users,
	}
}

func (e *engine) createUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		Password:    "irrelevant",
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (e *engine) follow(t *testing.T, followerID, followedID string) {
	t.Helper()
	link := models.UserLink{FollowerID: followerID, FollowedID: followedID}
	if err := e.db.Create(&link).Error; err != nil {
		t.Fatalf("create follow link: %v", err)
	}
}

func (e *engine) makeFriends(t *testing.T, a, b string) {
	t.Helper()
	e.follow(t, a, b)
	e.follow(t, b, a)
}

func (e *engine) block(t *testing.T, blockerID, blockedID string) {
	t.Helper()
	blockRow := models.UserBlock{BlockerID: blockerID, BlockedID: blockedID}
	if err := e.db.Create(&blockRow).Error; err != nil {
		t.Fatalf("create block: %v", err)
	}
}

func (e *engine) send(t *testing.T, convID, senderID, content string) *models.Message {
	t.Helper()
	msg, err := e.messages.Send(context.Background(), chat.SendInput{
		ConversationID: convID,
		SenderID:       senderID,
		Content:        &content,
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	return msg
}

// friendsWithConversation is the common fixture: two mutual followers and
// their open conversation.
func friendsWithConversation(t *testing.T, e *engine) (models.User, models.User, *models.Conversation) {
	t.Helper()
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	e.makeFriends(t, alice.ID, bob.ID)

	conv, err := e.directory.GetOrCreate(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("open conversation: %v", err)
	}
	return alice, bob, conv
}

// interleaveConversationWrite runs inject exactly once, right before the
// next UPDATE targeting the conversations table. It emulates a writer that
// committed between an operation's initial row load and its write-back.
func (e *engine) interleaveConversationWrite(t *testing.T, inject func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	err := e.db.Callback().Update().Before("gorm:update").Register("interleaved_writer", func(d *gorm.DB) {
		if fired || d.Statement.Schema == nil || d.Statement.Schema.Table != "conversations" {
			return
		}
		fired = true
		inject(d.Session(&gorm.Session{NewDB: true}))
	})
	if err != nil {
		t.Fatalf("register interleave callback: %v", err)
	}
	t.Cleanup(func() {
		_ = e.db.Callback().Update().Remove("interleaved_writer")
	})
}

// backdate shifts a message's sentAt so ordering tests do not depend on
// wall-clock resolution.
func (e *engine) backdate(t *testing.T, messageID string, sentAt time.Time) {
	t.Helper()
	if err := e.db.Model(&models.Message{}).Where("id = ?", messageID).
		Update("sent_at", sentAt).Error; err != nil {
		t.Fatalf("backdate message: %v", err)
	}
}
