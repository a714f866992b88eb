package migrations

import (
	"gorm.io/gorm"
)

// Migration001AddReplyToFK adds the self-referential foreign key for message
// reply threading. Done via raw SQL because AutoMigrate mishandles
// self-referential constraints when column types drift.
func Migration001AddReplyToFK() Migration {
	return Migration{
		ID:   "001_add_reply_to_fk",
		Name: "Add foreign key constraint for message reply threading",
		Up: func(db *gorm.DB) error {
			// Clear reply pointers to messages that no longer exist so the
			// constraint can be added.
			cleanupSQL := `
				UPDATE messages
				SET reply_to_id = NULL
				WHERE reply_to_id IS NOT NULL
				AND reply_to_id::text NOT IN (SELECT id::text FROM messages)
			`
			if err := db.Exec(cleanupSQL).Error; err != nil {
				return err
			}

			// reply_to_id must match the exact type of id or Postgres
			// rejects the constraint with SQLSTATE 42804.
			var idType string
			typeQuery := `
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'messages' AND column_name = 'id'
			`
			if err := db.Raw(typeQuery).Scan(&idType).Error; err != nil {
				return err
			}

			var alterSQL string
			if idType == "text" {
				alterSQL = "ALTER TABLE messages ALTER COLUMN reply_to_id TYPE text USING reply_to_id::text"
			} else {
				alterSQL = "ALTER TABLE messages ALTER COLUMN reply_to_id TYPE uuid USING reply_to_id::uuid"
			}
			if err := db.Exec(alterSQL).Error; err != nil {
				return err
			}

			var count int64
			checkSQL := `
				SELECT COUNT(*)
				FROM information_schema.table_constraints
				WHERE constraint_name = 'fk_messages_reply_to'
				AND table_name = 'messages'
			`
			if err := db.Raw(checkSQL).Scan(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}

			// ON DELETE SET NULL: removing the quoted message detaches the
			// reply instead of cascading.
			addFKSQL := `
				ALTER TABLE messages
				ADD CONSTRAINT fk_messages_reply_to
				FOREIGN KEY (reply_to_id)
				REFERENCES messages(id)
				ON DELETE SET NULL
				ON UPDATE CASCADE
			`
			return db.Exec(addFKSQL).Error
		},
		Down: func(db *gorm.DB) error {
			return db.Exec(`
				ALTER TABLE messages
				DROP CONSTRAINT IF EXISTS fk_messages_reply_to
			`).Error
		},
	}
}

// Migration002EnsureUUIDExtension ensures the uuid-ossp extension is available.
func Migration002EnsureUUIDExtension() Migration {
	return Migration{
		ID:   "002_ensure_uuid_extension",
		Name: "Ensure uuid-ossp extension is available",
		Up: func(db *gorm.DB) error {
			return db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
		},
		Down: func(db *gorm.DB) error {
			// Other schemas may depend on the extension; leave it in place.
			return nil
		},
	}
}
