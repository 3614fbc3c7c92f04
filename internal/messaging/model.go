package messaging

import "time"

// Message is one in-plan note between the plan's provider and patient.
// Sender and recipient are account ids, so unread counts work the same for
// both roles.
type Message struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	PlanID      string    `bson:"plan_id" json:"plan_id"`
	SenderID    string    `bson:"sender_id" json:"sender_id"`
	RecipientID string    `bson:"recipient_id" json:"recipient_id"`
	Body        string    `bson:"body" json:"body"`
	IsRead      bool      `bson:"is_read" json:"is_read"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type SendRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Thread is the inbox view of one plan: its latest message plus how many of
// the caller's messages in it are still unread.
type Thread struct {
	PlanID      string  `json:"plan_id"`
	LastMessage Message `json:"last_message"`
	Unread      int     `json:"unread"`
}
