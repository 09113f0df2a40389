// Package subscription implements newsletter subscription state and queries.
//
// A user holds at most one subscription record per newsletter. Subscribing
// creates the record or reactivates it and stamps it with the current time;
// unsubscribing only clears the active flag. Records are never deleted.
//
// The service depends on the Repository interface in repository.go and never
// touches net/http or the database driver directly.
package subscription
