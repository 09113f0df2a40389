package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
)

// Service implements subscription business logic. It holds no mutable state
// and is safe for concurrent use; atomicity of each write is left to the
// repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to stamp subscriptions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a subscription service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe activates the user's subscription to the newsletter, creating it
// on first use. The timestamp is refreshed on every call. Callers that need
// an "already subscribed" check must make it themselves.
func (s *Service) Subscribe(ctx context.Context, userID, newsletterID int64) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	newsletter, err := s.repo.GetNewsletter(ctx, newsletterID)
	if err != nil {
		return err
	}
	if newsletter == nil {
		return ErrNewsletterNotFound
	}

	if _, err := s.repo.UpsertSubscription(ctx, userID, newsletterID, s.now().UTC()); err != nil {
		return err
	}
	return nil
}

// Unsubscribe deactivates an existing subscription. The timestamp is left as is.
func (s *Service) Unsubscribe(ctx context.Context, userID, newsletterID int64) error {
	found, err := s.repo.DeactivateSubscription(ctx, userID, newsletterID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSubscriptionNotFound
	}
	return nil
}

// IsSubscribed reports whether an active subscription exists for the pair.
func (s *Service) IsSubscribed(ctx context.Context, userID, newsletterID int64) (bool, error) {
	return s.repo.IsSubscribed(ctx, userID, newsletterID)
}

// SubscribersBefore returns the active subscribers of a newsletter whose
// subscription timestamp is strictly before cutoff.
func (s *Service) SubscribersBefore(ctx context.Context, newsletterID int64, cutoff time.Time) ([]domain.UserView, error) {
	return s.subscribersWhere(ctx, newsletterID, func(t time.Time) bool { return t.Before(cutoff) })
}

// SubscribersAfter returns the active subscribers of a newsletter whose
// subscription timestamp is strictly after cutoff.
func (s *Service) SubscribersAfter(ctx context.Context, newsletterID int64, cutoff time.Time) ([]domain.UserView, error) {
	return s.subscribersWhere(ctx, newsletterID, func(t time.Time) bool { return t.After(cutoff) })
}

func (s *Service) subscribersWhere(ctx context.Context, newsletterID int64, keep func(time.Time) bool) ([]domain.UserView, error) {
	subscribers, err := s.repo.ActiveSubscribers(ctx, newsletterID)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(subscribers))
	for _, sub := range subscribers {
		// Records without a timestamp belong to neither side of the cutoff.
		if sub.SubscribedAt == nil || !keep(*sub.SubscribedAt) {
			continue
		}
		users = append(users, domain.User{UserID: sub.UserID, Username: sub.Username})
	}

	return s.userViews(ctx, users)
}

// AllNewsletters returns every newsletter with its active subscribers' usernames.
func (s *Service) AllNewsletters(ctx context.Context) ([]domain.NewsletterView, error) {
	newsletters, err := s.repo.ListNewsletters(ctx)
	if err != nil {
		return nil, err
	}
	return s.newsletterViews(ctx, newsletters)
}

// NewsletterWithSubscribers returns a newsletter with its active subscription
// records. A newsletter with no active subscribers yields ErrNoSubscribers.
func (s *Service) NewsletterWithSubscribers(ctx context.Context, newsletterID int64) (*domain.NewsletterWithSubscribers, error) {
	subscribers, err := s.repo.ActiveSubscribers(ctx, newsletterID)
	if err != nil {
		return nil, err
	}
	if len(subscribers) == 0 {
		return nil, ErrNoSubscribers
	}

	newsletter, err := s.repo.GetNewsletter(ctx, newsletterID)
	if err != nil {
		return nil, err
	}
	if newsletter == nil {
		return nil, ErrNoSubscribers
	}

	return &domain.NewsletterWithSubscribers{
		Newsletter:  *newsletter,
		Subscribers: subscribers,
	}, nil
}

// GetUser returns the user's profile with the newsletters they actively receive.
func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.UserView, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	views, err := s.userViews(ctx, []domain.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) userViews(ctx context.Context, users []domain.User) ([]domain.UserView, error) {
	views := make([]domain.UserView, 0, len(users))
	if len(users) == 0 {
		return views, nil
	}

	userIDs := make([]int64, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.UserID)
	}

	byUser, err := s.repo.ActiveNewsletters(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("loading subscribed newsletters: %w", err)
	}

	var all []domain.Newsletter
	for _, u := range users {
		all = append(all, byUser[u.UserID]...)
	}
	usernames, err := s.usernames(ctx, all)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		newsletters := byUser[u.UserID]
		nv := make([]domain.NewsletterView, 0, len(newsletters))
		for _, n := range newsletters {
			nv = append(nv, newsletterView(n, usernames[n.NewsletterID]))
		}
		views = append(views, domain.UserView{
			UserID:                u.UserID,
			Username:              u.Username,
			SubscribedNewsletters: nv,
		})
	}
	return views, nil
}

func (s *Service) newsletterViews(ctx context.Context, newsletters []domain.Newsletter) ([]domain.NewsletterView, error) {
	usernames, err := s.usernames(ctx, newsletters)
	if err != nil {
		return nil, err
	}

	views := make([]domain.NewsletterView, 0, len(newsletters))
	for _, n := range newsletters {
		views = append(views, newsletterView(n, usernames[n.NewsletterID]))
	}
	return views, nil
}

// usernames loads the active subscriber names for a set of newsletters,
// querying each newsletter ID once.
func (s *Service) usernames(ctx context.Context, newsletters []domain.Newsletter) (map[int64][]string, error) {
	if len(newsletters) == 0 {
		return map[int64][]string{}, nil
	}

	seen := make(map[int64]struct{}, len(newsletters))
	ids := make([]int64, 0, len(newsletters))
	for _, n := range newsletters {
		if _, ok := seen[n.NewsletterID]; ok {
			continue
		}
		seen[n.NewsletterID] = struct{}{}
		ids = append(ids, n.NewsletterID)
	}

	names, err := s.repo.ActiveUsernames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading subscriber usernames: %w", err)
	}
	return names, nil
}

func newsletterView(n domain.Newsletter, usernames []string) domain.NewsletterView {
	if usernames == nil {
		usernames = []string{}
	}
	return domain.NewsletterView{
		NewsletterID:        n.NewsletterID,
		Title:               n.Title,
		Content:             n.Content,
		PublicationDate:     n.PublicationDate,
		SubscribedUsernames: usernames,
	}
}
