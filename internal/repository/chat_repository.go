package repository

import (
	"context"
	"database/sql"

	"github.com/zeno-labs/museum-companion/internal/model"
)

// ChatRepo persists conversation transcripts.  A chat row is created
// lazily for each (museum, user) pair and messages are appended in
// order; nothing here is ever updated or deleted.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo returns a new ChatRepo bound to the given database.
func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// AppendMessages stores the given messages on the transcript for
// (museumID, userID), creating the chat row on first use.  The whole
// append runs in one transaction so a transcript never gains a partial
// exchange.
func (r *ChatRepo) AppendMessages(ctx context.Context, museumID, userID uint64, messages []model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	chatID, err := r.ensureChatTx(ctx, tx, museumID, userID)
	if err != nil {
		return err
	}

	query := `INSERT INTO chat_messages (chat_id, sender, body, sent_at) VALUES `
	args := make([]interface{}, 0, len(messages)*4)
	for i, m := range messages {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, chatID, m.Sender, m.Body, m.SentAt.UTC())
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = ?`, chatID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ensureChatTx finds or creates the chat row for (museumID, userID).
func (r *ChatRepo) ensureChatTx(ctx context.Context, tx *sql.Tx, museumID, userID uint64) (uint64, error) {
	const sel = `SELECT id FROM chats WHERE museum_id = ? AND user_id = ?`
	var id uint64
	err := tx.QueryRowContext(ctx, sel, museumID, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	const ins = `INSERT INTO chats (museum_id, user_id) VALUES (?, ?)`
	result, err := tx.ExecContext(ctx, ins, museumID, userID)
	if err != nil {
		return 0, err
	}
	newID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// History returns the transcript for (museumID, userID) in send order.
// An empty slice is returned when no chat exists yet.
func (r *ChatRepo) History(ctx context.Context, museumID, userID uint64) ([]model.ChatMessage, error) {
	const q = `SELECT cm.id, cm.chat_id, cm.sender, cm.body, cm.sent_at
	           FROM chat_messages cm
	           JOIN chats c ON c.id = cm.chat_id
	           WHERE c.museum_id = ? AND c.user_id = ?
	           ORDER BY cm.id`
	rows, err := r.db.QueryContext(ctx, q, museumID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ChatMessage, 0)
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Sender, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
