package messages

import (
	"context"

	"github.com/dmitrijs2005/localdate/internal/models"
)

// Repository is the storage contract for message records.
type Repository interface {
	// Send persists a new message with a generated id, the current time and
	// read=false. Content that is empty after trimming is rejected with
	// common.ErrorValidation; nothing is persisted on failure.
	Send(ctx context.Context, senderID, receiverID, content string) (*models.Message, error)

	// GetBetween returns both directions of the pair's messages, ordered by
	// timestamp ascending for display.
	GetBetween(ctx context.Context, userID, otherUserID string) ([]models.Message, error)

	// GetForUser returns everything the user sent or received, newest first.
	// Used by the chat-list view.
	GetForUser(ctx context.Context, userID string) ([]models.Message, error)

	// MarkRead sets read=true. Already-read or missing ids are a no-op.
	MarkRead(ctx context.Context, id string) error
}
