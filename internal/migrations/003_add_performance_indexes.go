package migrations

import (
	"gorm.io/gorm"
)

// Migration003AddPerformanceIndexes adds indexes for hot-path queries that
// the model tags do not cover:
//  1. unread counting and message pages scan only live rows, so a partial
//     index excluding soft-deleted messages keeps those scans tight
//  2. conversation listing filters on either participant column; the pair
//     unique index only covers user_a as a prefix
//  3. follower counts and listings look up user_links by the followed side
//
// Plain CREATE INDEX IF NOT EXISTS (not CONCURRENTLY) because the migrator
// wraps Up in a transaction; run the concurrent variant by hand on a busy
// production table.
func Migration003AddPerformanceIndexes() Migration {
	return Migration{
		ID:   "003_add_performance_indexes",
		Name: "Add performance indexes for hot-path queries",
		Up: func(db *gorm.DB) error {
			idx1 := `
				CREATE INDEX IF NOT EXISTS idx_messages_conv_sent_live
				ON messages (conversation_id, sent_at DESC)
				WHERE is_deleted = false
			`
			if err := db.Exec(idx1).Error; err != nil {
				return err
			}

			idx2 := `
				CREATE INDEX IF NOT EXISTS idx_conversations_user_b
				ON conversations (user_b_id)
			`
			if err := db.Exec(idx2).Error; err != nil {
				return err
			}

			idx3 := `
				CREATE INDEX IF NOT EXISTS idx_user_links_followed
				ON user_links (followed_id)
			`
			return db.Exec(idx3).Error
		},
		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_user_links_followed`).Error; err != nil {
				return err
			}
			if err := db.Exec(`DROP INDEX IF EXISTS idx_conversations_user_b`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP INDEX IF EXISTS idx_messages_conv_sent_live`).Error
		},
	}
}
