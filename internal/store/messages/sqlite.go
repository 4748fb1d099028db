package messages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/dbx"
	"github.com/dmitrijs2005/localdate/internal/models"
	"github.com/google/uuid"
)

// timeNow is a test seam for the clock.
var timeNow = time.Now

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Send(ctx context.Context, senderID, receiverID, content string) (*models.Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, fmt.Errorf("sender and receiver are required: %w", common.ErrorValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty message content: %w", common.ErrorValidation)
	}

	m := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  timeNow(),
		Read:       false,
	}

	query := `INSERT INTO messages (id, sender_id, receiver_id, content, timestamp, read)
		VALUES (?, ?, ?, ?, ?, 0)`
	if _, err := r.db.ExecContext(ctx, query,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.Timestamp.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) queryMessages(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var m models.Message
		var ts int64
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &ts, &m.Read); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.Timestamp = time.UnixMilli(ts)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetBetween(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, timestamp, read
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY timestamp ASC, id ASC
	`
	return r.queryMessages(ctx, query, userID, otherUserID, otherUserID, userID)
}

func (r *SQLiteRepository) GetForUser(ctx context.Context, userID string) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, timestamp, read
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY timestamp DESC, id DESC
	`
	return r.queryMessages(ctx, query, userID, userID)
}

func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE messages SET read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
