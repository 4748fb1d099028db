package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/logging"
	"github.com/dmitrijs2005/localdate/internal/models"
	"github.com/dmitrijs2005/localdate/internal/store"
)

// DefaultPollInterval is how often an active conversation re-reads the store
// to approximate live delivery without a push channel.
const DefaultPollInterval = 5 * time.Second

// ConversationService tracks the active chat counterpart and its message
// list, refreshing on a fixed interval while a chat is selected. At most one
// poller is alive per service instance.
type ConversationService struct {
	identity *IdentityService
	store    *store.Store
	logger   logging.Logger
	interval time.Duration

	mu         sync.Mutex
	activeChat string
	msgs       []models.Message
	errMsg     string
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewConversationService(identity *IdentityService, st *store.Store, logger logging.Logger, interval time.Duration) *ConversationService {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ConversationService{identity: identity, store: st, logger: logger, interval: interval}
}

// SetActiveChat selects the conversation counterpart. Any running poller is
// stopped first; a non-empty selection loads the pair's history, marks
// inbound unread messages read and starts a fresh refresh loop. An empty id
// clears the selection.
func (c *ConversationService) SetActiveChat(ctx context.Context, userID string) error {
	c.stopPolling()

	c.mu.Lock()
	c.activeChat = userID
	c.msgs = nil
	c.errMsg = ""
	c.mu.Unlock()

	user := c.identity.CurrentUser()
	if user == nil || userID == "" {
		return nil
	}

	if err := c.refresh(ctx, user.ID, userID); err != nil {
		c.setError(err.Error())
		return err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.poll(pollCtx, user.ID, userID, done)
	return nil
}

func (c *ConversationService) poll(ctx context.Context, userID, otherID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.refresh(ctx, userID, otherID); err != nil {
				c.setError(err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}

// refresh replaces the local list with the stored history and marks unread
// inbound messages read. Read-marking is best effort: a failed write is
// logged and the loop goes on.
func (c *ConversationService) refresh(ctx context.Context, userID, otherID string) error {
	list, err := c.store.Messages.GetBetween(ctx, userID, otherID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	c.mu.Lock()
	if c.activeChat != otherID {
		// Selection changed while the query was in flight.
		c.mu.Unlock()
		return nil
	}
	c.msgs = list
	c.errMsg = ""
	c.mu.Unlock()

	for i := range list {
		m := &list[i]
		if m.Read || m.SenderID != otherID {
			continue
		}
		if err := c.store.Messages.MarkRead(ctx, m.ID); err != nil {
			c.logger.Warn(ctx, "failed to mark message read", "message_id", m.ID, "error", err)
			continue
		}
		c.markLocalRead(m.ID)
	}
	return nil
}

// Send persists the message and appends it to the local list immediately;
// waiting for the next poll would show a visible delay.
func (c *ConversationService) Send(ctx context.Context, receiverID, content string) (*models.Message, error) {
	user := c.identity.CurrentUser()
	if user == nil {
		return nil, common.ErrorNotLoggedIn
	}

	m, err := c.store.Messages.Send(ctx, user.ID, receiverID, content)
	if err != nil {
		c.setError(err.Error())
		return nil, err
	}

	c.mu.Lock()
	if c.activeChat == receiverID {
		c.msgs = append(c.msgs, *m)
	}
	c.mu.Unlock()
	return m, nil
}

// MarkAsRead writes the flag through the store and flips the matching local
// record without refetching.
func (c *ConversationService) MarkAsRead(ctx context.Context, id string) error {
	if err := c.store.Messages.MarkRead(ctx, id); err != nil {
		c.setError(err.Error())
		return err
	}
	c.markLocalRead(id)
	return nil
}

// Conversations summarizes the current user's threads for the chat list:
// one entry per counterpart with the latest message and the unread count.
func (c *ConversationService) Conversations(ctx context.Context) ([]models.Conversation, error) {
	user := c.identity.CurrentUser()
	if user == nil {
		return nil, common.ErrorNotLoggedIn
	}

	all, err := c.store.Messages.GetForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var result []models.Conversation
	for _, m := range all {
		other := m.SenderID
		if other == user.ID {
			other = m.ReceiverID
		}
		i, ok := index[other]
		if !ok {
			// Messages arrive newest first, so the first one seen per
			// counterpart is the latest.
			index[other] = len(result)
			result = append(result, models.Conversation{UserID: other, LastMessage: m})
			i = index[other]
		}
		if !m.Read && m.ReceiverID == user.ID {
			result[i].Unread++
		}
	}
	return result, nil
}

// Messages returns a snapshot of the active conversation's list.
func (c *ConversationService) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// ActiveChat returns the selected counterpart id, empty when none.
func (c *ConversationService) ActiveChat() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeChat
}

// Err returns the last error message, empty after a successful refresh.
func (c *ConversationService) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Close stops the poller. Safe to call repeatedly.
func (c *ConversationService) Close() {
	c.stopPolling()
}

// stopPolling cancels the refresh loop and waits for it to exit between
// ticks; an in-flight refresh is never interrupted mid-write.
func (c *ConversationService) stopPolling() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *ConversationService) markLocalRead(id string) {
	c.mu.Lock()
	for i := range c.msgs {
		if c.msgs[i].ID == id {
			c.msgs[i].Read = true
		}
	}
	c.mu.Unlock()
}

func (c *ConversationService) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}
