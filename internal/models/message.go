package models

import "time"

// Message is a directed text message between two users. Timestamp is the sole
// ordering key; Read transitions false→true exactly once and never reverts.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Conversation summarizes a message thread with one counterpart for list
// views: the most recent message and how many inbound ones are still unread.
type Conversation struct {
	UserID      string
	LastMessage Message
	Unread      int
}
