package subscription

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every lookup failure. Match with errors.Is.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrNewsletterNotFound   = fmt.Errorf("newsletter %w", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("subscription %w", ErrNotFound)

	// ErrNoSubscribers is returned by NewsletterWithSubscribers when the
	// newsletter has no active subscribers. It does not distinguish a missing
	// newsletter from an unsubscribed one.
	ErrNoSubscribers = fmt.Errorf("newsletter %w or no subscribers", ErrNotFound)
)
