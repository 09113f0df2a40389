package domain

import "time"

type Subscription struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	NewsletterID int64      `json:"newsletterId"`
	Active       bool       `json:"active"`
	SubscribedAt *time.Time `json:"subscribedAt,omitempty"`
}

// Subscriber is an active subscription joined with its user's name.
type Subscriber struct {
	Subscription
	Username string `json:"username"`
}

// SubscribeRequest is the body of subscribe and unsubscribe. The IDs are
// pointers so an absent field can be told apart from an ID that matches
// nothing.
type SubscribeRequest struct {
	UserID       *int64 `json:"userId" validate:"required"`
	NewsletterID *int64 `json:"newsletterId" validate:"required"`
}

// MessageResponse is the body returned by the subscribe and unsubscribe endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
