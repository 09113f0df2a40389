package subscription

import (
	"context"
	"time"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
)

// Repository defines the data access contract for users, newsletters and
// subscription records. Lookups of a single missing row return (nil, nil).
type Repository interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetNewsletter(ctx context.Context, newsletterID int64) (*domain.Newsletter, error)
	ListNewsletters(ctx context.Context) ([]domain.Newsletter, error)

	// UpsertSubscription activates the (user, newsletter) record and sets its
	// timestamp, creating the record if it does not exist.
	UpsertSubscription(ctx context.Context, userID, newsletterID int64, at time.Time) (*domain.Subscription, error)

	// DeactivateSubscription clears the active flag. Returns false if no
	// record exists for the pair.
	DeactivateSubscription(ctx context.Context, userID, newsletterID int64) (bool, error)

	IsSubscribed(ctx context.Context, userID, newsletterID int64) (bool, error)

	// ActiveSubscribers returns the active records of a newsletter joined with usernames.
	ActiveSubscribers(ctx context.Context, newsletterID int64) ([]domain.Subscriber, error)

	// ActiveUsernames maps each newsletter ID to its active subscribers' usernames.
	ActiveUsernames(ctx context.Context, newsletterIDs []int64) (map[int64][]string, error)

	// ActiveNewsletters maps each user ID to the newsletters they actively receive.
	ActiveNewsletters(ctx context.Context, userIDs []int64) (map[int64][]domain.Newsletter, error)
}
