package domain

type User struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// UserView is a user together with the newsletters they actively receive.
type UserView struct {
	UserID                int64            `json:"userId"`
	Username              string           `json:"username"`
	SubscribedNewsletters []NewsletterView `json:"subscribedNewsletters"`
}
