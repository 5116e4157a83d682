package store

import (
	"fmt"
	"time"
)

// maxContentSize caps the stored raw message content. Extraction has
// already run by the time a message is logged; the log exists for
// audit and UI, not reprocessing.
const maxContentSize = 16 * 1024 // 16KB

// Message is one row of the ingestion log.
type Message struct {
	ID            int64
	MessageID     string
	Sender        string
	Content       string
	EntityCount   int
	RelationCount int
	ReceivedAt    int64
}

// LogMessage records one processed message with the counts of entities
// touched and relations admitted.
func (db *DB) LogMessage(messageID, sender, content string, entityCount, relationCount int, receivedAt time.Time) error {
	if len(content) > maxContentSize {
		content = content[:maxContentSize]
	}

	_, err := db.Exec(`
		INSERT INTO messages (message_id, sender, content, entity_count, relation_count, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, messageID, sender, content, entityCount, relationCount, receivedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("log message: %w", err)
	}
	return nil
}

// RecentMessages returns the most recently ingested messages.
func (db *DB) RecentMessages(limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, message_id, sender, content, entity_count, relation_count, received_at
		FROM messages ORDER BY received_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.MessageID, &m.Sender, &m.Content, &m.EntityCount, &m.RelationCount, &m.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMessages returns the total number of logged messages.
func (db *DB) CountMessages() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
