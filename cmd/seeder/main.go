package main

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/LucHocIT/Social-media-app-sub000/internal/config"
	"github.com/LucHocIT/Social-media-app-sub000/internal/database"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
)

// Seeds a demo social graph: users who follow each other, a conversation
// with a few messages, and a couple of posts. Meant for local development.
func main() {
	config.LoadConfig()
	database.Connect()

	log.Println("Running migrations...")
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.UserLink{},
		&models.UserBlock{},
		&models.Conversation{},
		&models.Message{},
		&models.MessageReaction{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	users := []models.User{
		{Username: "alice", Email: "alice@example.com", DisplayName: "Alice", Password: string(hash)},
		{Username: "bob", Email: "bob@example.com", DisplayName: "Bob", Password: string(hash)},
		{Username: "carol", Email: "carol@example.com", DisplayName: "Carol", Password: string(hash)},
	}
	for i := range users {
		if err := database.DB.Where("username = ?", users[i].Username).FirstOrCreate(&users[i]).Error; err != nil {
			log.Fatalf("Seeding user %s failed: %v", users[i].Username, err)
		}
	}
	alice, bob, carol := users[0], users[1], users[2]

	// Mutual follows: alice<->bob can chat, carol follows alice one-way.
	links := []models.UserLink{
		{FollowerID: alice.ID, FollowedID: bob.ID},
		{FollowerID: bob.ID, FollowedID: alice.ID},
		{FollowerID: carol.ID, FollowedID: alice.ID},
	}
	for i := range links {
		database.DB.Where("follower_id = ? AND followed_id = ?", links[i].FollowerID, links[i].FollowedID).
			FirstOrCreate(&links[i])
	}

	userA, userB := models.CanonicalPair(alice.ID, bob.ID)
	conv := models.Conversation{UserAID: userA, UserBID: userB, IsActiveForA: true, IsActiveForB: true}
	database.DB.Where("user_a_id = ? AND user_b_id = ?", userA, userB).FirstOrCreate(&conv)

	var messageCount int64
	database.DB.Model(&models.Message{}).Where("conversation_id = ?", conv.ID).Count(&messageCount)
	if messageCount == 0 {
		texts := []struct {
			sender  string
			content string
		}{
			{alice.ID, "Hey Bob, did you see the new release?"},
			{bob.ID, "Just pulled it. The presence stuff is slick."},
			{alice.ID, "Ship it then :)"},
		}
		now := time.Now().UTC()
		for i, t := range texts {
			content := t.content
			sentAt := now.Add(time.Duration(i-len(texts)) * time.Minute)
			msg := models.Message{
				ConversationID: conv.ID,
				SenderID:       t.sender,
				Content:        &content,
				SentAt:         sentAt,
			}
			if err := database.DB.Create(&msg).Error; err != nil {
				log.Fatalf("Seeding message failed: %v", err)
			}
			database.DB.Model(&models.Conversation{}).Where("id = ?", conv.ID).Updates(map[string]interface{}{
				"last_message_at":        sentAt,
				"last_message_summary":   content,
				"last_message_sender_id": t.sender,
				"message_count":          int64(i + 1),
			})
		}
	}

	posts := []models.Post{
		{AuthorID: alice.ID, Content: "First post on the new backend!"},
		{AuthorID: bob.ID, Content: "Realtime chat is live. Come say hi."},
	}
	for i := range posts {
		database.DB.Where("author_id = ? AND content = ?", posts[i].AuthorID, posts[i].Content).
			FirstOrCreate(&posts[i])
	}

	log.Println("Seed complete: alice / bob / carol (password123)")
}
