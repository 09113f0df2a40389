package domain

// PublicationDateLayout is the text format newsletters store their publication date in.
const PublicationDateLayout = "2006-01-02"

type Newsletter struct {
	NewsletterID    int64  `json:"newsletterId"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	PublicationDate string `json:"publicationDate"`
}

// NewsletterView is a newsletter annotated with its active subscribers' usernames.
type NewsletterView struct {
	NewsletterID        int64    `json:"newsletterId"`
	Title               string   `json:"title"`
	Content             string   `json:"content"`
	PublicationDate     string   `json:"publicationDate"`
	SubscribedUsernames []string `json:"subscribedUsernames"`
}

// NewsletterWithSubscribers is a newsletter with its active subscription records loaded.
type NewsletterWithSubscribers struct {
	Newsletter
	Subscribers []Subscriber
}

// View flattens the subscriber list into usernames.
func (n NewsletterWithSubscribers) View() NewsletterView {
	usernames := make([]string, 0, len(n.Subscribers))
	for _, s := range n.Subscribers {
		usernames = append(usernames, s.Username)
	}
	return NewsletterView{
		NewsletterID:        n.NewsletterID,
		Title:               n.Title,
		Content:             n.Content,
		PublicationDate:     n.PublicationDate,
		SubscribedUsernames: usernames,
	}
}
