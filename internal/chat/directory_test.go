package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LucHocIT/Social-media-app-sub000/internal/chat"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
)

func TestGetOrCreateCanonicalizesPair(t *testing.T) {
	e := newTestEngine(t)
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	e.makeFriends(t, alice.ID, bob.ID)
	ctx := context.Background()

	conv1, err := e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	conv2, err := e.directory.GetOrCreate(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, conv1.ID, conv2.ID, "argument order must not create a second conversation")
	assert.Less(t, conv1.UserAID, conv1.UserBID)

	var n int64
	e.db.Model(&models.Conversation{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestGetOrCreateRequiresMutualFollow(t *testing.T) {
	e := newTestEngine(t)
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	ctx := context.Background()

	_, err := e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, chat.ErrNotFriends)

	// One-way follow is not enough.
	e.follow(t, alice.ID, bob.ID)
	_, err = e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, chat.ErrNotFriends)

	e.follow(t, bob.ID, alice.ID)
	_, err = e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	assert.NoError(t, err)
}

func TestGetOrCreateRejectsBlockedAndSelf(t *testing.T) {
	e := newTestEngine(t)
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	e.makeFriends(t, alice.ID, bob.ID)
	e.block(t, bob.ID, alice.ID)
	ctx := context.Background()

	_, err := e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, chat.ErrBlocked, "a block in either direction denies the requester")

	_, err = e.directory.GetOrCreate(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, chat.ErrInvalidInput)
}

func TestHideAndReactivateOnOpen(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	ctx := context.Background()

	require.NoError(t, e.directory.Hide(ctx, conv.ID, alice.ID))

	convs, err := e.directory.ListFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, convs, "hidden conversation must leave the requester's list")

	convs, err = e.directory.ListFor(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, convs, 1, "the other participant's view is unaffected")

	// Re-opening reactivates in place instead of creating a new row.
	reopened, err := e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, reopened.ID)
	assert.True(t, reopened.ActiveFor(alice.ID))
}

func TestHideReactivatedBySend(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	ctx := context.Background()

	require.NoError(t, e.directory.Hide(ctx, conv.ID, alice.ID))
	e.send(t, conv.ID, bob.ID, "you still there?")

	convs, err := e.directory.ListFor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1, "a new message resurfaces the hidden thread")
	assert.True(t, convs[0].ActiveFor(alice.ID))
}

func TestSendBlockedAfterConversationExists(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)

	e.block(t, bob.ID, alice.ID)

	_, err := e.messages.Send(context.Background(), chat.SendInput{
		ConversationID: conv.ID,
		SenderID:       alice.ID,
		Content:        strPtr("hello?"),
	})
	assert.ErrorIs(t, err, chat.ErrBlocked, "blocks are re-checked at send time")
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	ctx := context.Background()

	// Null lastReadAt counts everything from the other side.
	e.send(t, conv.ID, alice.ID, "one")
	e.send(t, conv.ID, alice.ID, "two")
	e.send(t, conv.ID, bob.ID, "own message never counts")

	n, err := e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = e.directory.MarkRead(ctx, conv.ID, bob.ID)
	require.NoError(t, err)

	n, err = e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	e.send(t, conv.ID, alice.ID, "three")
	n, err = e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUnreadCountExactTieIsUnread(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	ctx := context.Background()

	msg := e.send(t, conv.ID, alice.ID, "simultaneous")

	// Pin the read marker to the message's exact sentAt.
	var stored models.Message
	require.NoError(t, e.db.First(&stored, "id = ?", msg.ID).Error)
	require.NoError(t, e.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).
		Update(conv.LastReadColumn(bob.ID), stored.SentAt).Error)

	n, err := e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "a message sent at the exact read-marker instant stays unread")
}

func TestUnreadSkipsDeletedMessages(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	ctx := context.Background()

	keep := e.send(t, conv.ID, alice.ID, "keep")
	gone := e.send(t, conv.ID, alice.ID, "gone")
	_ = keep

	ok, err := e.messages.Delete(ctx, gone.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := e.directory.UnreadCount(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMarkReadRequiresActiveParticipant(t *testing.T) {
	e := newTestEngine(t)
	alice, _, conv := friendsWithConversation(t, e)
	mallory := e.createUser(t, "mallory")
	ctx := context.Background()

	_, err := e.directory.MarkRead(ctx, conv.ID, mallory.ID)
	assert.ErrorIs(t, err, chat.ErrUnauthorized)

	require.NoError(t, e.directory.Hide(ctx, conv.ID, alice.ID))
	_, err = e.directory.MarkRead(ctx, conv.ID, alice.ID)
	assert.ErrorIs(t, err, chat.ErrUnauthorized, "a hidden conversation cannot be marked read")
}

func TestListForOrdersByActivity(t *testing.T) {
	e := newTestEngine(t)
	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	carol := e.createUser(t, "carol")
	e.makeFriends(t, alice.ID, bob.ID)
	e.makeFriends(t, alice.ID, carol.ID)
	ctx := context.Background()

	withBob, err := e.directory.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := e.directory.GetOrCreate(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	m1 := e.send(t, withBob.ID, bob.ID, "older")
	m2 := e.send(t, withCarol.ID, carol.ID, "newer")
	base := time.Now().UTC()
	e.backdate(t, m1.ID, base.Add(-2*time.Hour))
	e.backdate(t, m2.ID, base.Add(-1*time.Hour))
	require.NoError(t, e.db.Model(&models.Conversation{}).Where("id = ?", withBob.ID).
		Update("last_message_at", base.Add(-2*time.Hour)).Error)
	require.NoError(t, e.db.Model(&models.Conversation{}).Where("id = ?", withCarol.ID).
		Update("last_message_at", base.Add(-1*time.Hour)).Error)

	convs, err := e.directory.ListFor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, withCarol.ID, convs[0].ID, "most recent activity first")
	assert.Equal(t, withBob.ID, convs[1].ID)
}

func TestPurgeCascades(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	ctx := context.Background()

	msg := e.send(t, conv.ID, alice.ID, "to be purged")
	_, err := e.reactions.React(ctx, msg.ID, bob.ID, "like")
	require.NoError(t, err)

	require.NoError(t, e.directory.Purge(ctx, conv.ID, alice.ID))

	var convCount, msgCount, reactionCount int64
	e.db.Model(&models.Conversation{}).Count(&convCount)
	e.db.Model(&models.Message{}).Count(&msgCount)
	e.db.Model(&models.MessageReaction{}).Count(&reactionCount)
	assert.Zero(t, convCount)
	assert.Zero(t, msgCount)
	assert.Zero(t, reactionCount)
}

func strPtr(s string) *string { return &s }

func TestMarkReadKeepsInterleavedSummary(t *testing.T) {
	e := newTestEngine(t)
	alice, bob, conv := friendsWithConversation(t, e)
	e.send(t, conv.ID, alice.ID, "first")

	// A send lands between MarkRead's row load and its marker write; the
	// summary and counter must survive because the marker write only
	// touches the reader's column.
	e.interleaveConversationWrite(t, func(tx *gorm.DB) {
		require.NoError(t, tx.Exec(
			"UPDATE conversations SET last_message_summary = ?, message_count = ? WHERE id = ?",
			"landed meanwhile", 7, conv.ID,
		).Error)
	})

	_, err := e.directory.MarkRead(context.Background(), conv.ID, bob.ID)
	require.NoError(t, err)

	var after models.Conversation
	require.NoError(t, e.db.First(&after, "id = ?", conv.ID).Error)
	assert.Equal(t, "landed meanwhile", after.LastMessageSummary)
	assert.Equal(t, int64(7), after.MessageCount)
	assert.NotNil(t, after.LastReadFor(bob.ID))
}
