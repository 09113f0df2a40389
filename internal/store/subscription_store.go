package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
)

// UpsertSubscription activates the (user, newsletter) record and stamps it
// with at. The unique constraint on the pair makes concurrent subscribes
// converge on one row.
func (s *PostgresStore) UpsertSubscription(ctx context.Context, userID, newsletterID int64, at time.Time) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, newsletter_id, active, subscribed_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (user_id, newsletter_id)
		DO UPDATE SET active = TRUE, subscribed_at = EXCLUDED.subscribed_at
		RETURNING id, user_id, newsletter_id, active, subscribed_at
	`, userID, newsletterID, at).Scan(
		&sub.ID, &sub.UserID, &sub.NewsletterID, &sub.Active, &sub.SubscribedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting subscription: %w", err)
	}
	return &sub, nil
}

// DeactivateSubscription clears the active flag and leaves subscribed_at alone.
func (s *PostgresStore) DeactivateSubscription(ctx context.Context, userID, newsletterID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions SET active = FALSE
		WHERE user_id = $1 AND newsletter_id = $2
	`, userID, newsletterID)
	if err != nil {
		return false, fmt.Errorf("deactivating subscription: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) IsSubscribed(ctx context.Context, userID, newsletterID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND newsletter_id = $2 AND active
		)
	`, userID, newsletterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking subscription: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ActiveSubscribers(ctx context.Context, newsletterID int64) ([]domain.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.user_id, s.newsletter_id, s.active, s.subscribed_at, u.username
		FROM subscriptions s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.newsletter_id = $1 AND s.active
		ORDER BY s.id
	`, newsletterID)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := []domain.Subscriber{}
	for rows.Next() {
		var sub domain.Subscriber
		err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.NewsletterID, &sub.Active, &sub.SubscribedAt, &sub.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscribers: %w", err)
	}

	return subscribers, nil
}

func (s *PostgresStore) ActiveUsernames(ctx context.Context, newsletterIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string, len(newsletterIDs))
	if len(newsletterIDs) == 0 {
		return result, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.newsletter_id, u.username
		FROM subscriptions s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.newsletter_id = ANY($1) AND s.active
		ORDER BY s.newsletter_id, s.id
	`, newsletterIDs)
	if err != nil {
		return nil, fmt.Errorf("querying subscriber usernames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			newsletterID int64
			username     string
		)
		if err := rows.Scan(&newsletterID, &username); err != nil {
			return nil, fmt.Errorf("scanning subscriber username: %w", err)
		}
		result[newsletterID] = append(result[newsletterID], username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriber usernames: %w", err)
	}

	return result, nil
}

func (s *PostgresStore) ActiveNewsletters(ctx context.Context, userIDs []int64) (map[int64][]domain.Newsletter, error) {
	result := make(map[int64][]domain.Newsletter, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.user_id, n.newsletter_id, n.title, n.content, n.publication_date
		FROM subscriptions s
		JOIN newsletters n ON n.newsletter_id = s.newsletter_id
		WHERE s.user_id = ANY($1) AND s.active
		ORDER BY s.user_id, n.newsletter_id
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("querying subscribed newsletters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			n      domain.Newsletter
		)
		if err := rows.Scan(&userID, &n.NewsletterID, &n.Title, &n.Content, &n.PublicationDate); err != nil {
			return nil, fmt.Errorf("scanning subscribed newsletter: %w", err)
		}
		result[userID] = append(result[userID], n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscribed newsletters: %w", err)
	}

	return result, nil
}
