package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Priya8975/newsletter-subscription-service/internal/domain"
	"github.com/Priya8975/newsletter-subscription-service/internal/metrics"
	"github.com/Priya8975/newsletter-subscription-service/internal/subscription"
	ws "github.com/Priya8975/newsletter-subscription-service/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// SubscriptionService is the behavior the handlers need from subscription.Service.
type SubscriptionService interface {
	Subscribe(ctx context.Context, userID, newsletterID int64) error
	Unsubscribe(ctx context.Context, userID, newsletterID int64) error
	IsSubscribed(ctx context.Context, userID, newsletterID int64) (bool, error)
	SubscribersBefore(ctx context.Context, newsletterID int64, cutoff time.Time) ([]domain.UserView, error)
	SubscribersAfter(ctx context.Context, newsletterID int64, cutoff time.Time) ([]domain.UserView, error)
	AllNewsletters(ctx context.Context) ([]domain.NewsletterView, error)
	NewsletterWithSubscribers(ctx context.Context, newsletterID int64) (*domain.NewsletterWithSubscribers, error)
	GetUser(ctx context.Context, userID int64) (*domain.UserView, error)
}

// ActivityHub publishes subscription activity to websocket clients.
type ActivityHub interface {
	Broadcast(event ws.ActivityEvent)
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

type SubscriptionHandler struct {
	svc      SubscriptionService
	hub      ActivityHub
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewSubscriptionHandler(svc SubscriptionService, hub ActivityHub, logger *slog.Logger) *SubscriptionHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &SubscriptionHandler{
		svc:      svc,
		hub:      hub,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, newsletterID, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	subscribed, err := h.svc.IsSubscribed(r.Context(), userID, newsletterID)
	if err != nil {
		h.internalError(w, "failed to check subscription", err)
		return
	}
	if subscribed {
		respondMessage(w, http.StatusBadRequest, "User is already subscribed")
		return
	}

	if err := h.svc.Subscribe(r.Context(), userID, newsletterID); err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Subscription failed: "+err.Error())
			return
		}
		h.internalError(w, "failed to subscribe", err)
		return
	}

	metrics.SubscriptionChanges.WithLabelValues(metrics.ActionSubscribe).Inc()
	h.publish(ws.EventSubscribed, userID, newsletterID)
	respondMessage(w, http.StatusCreated, "Subscription successful")
}

func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, newsletterID, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	subscribed, err := h.svc.IsSubscribed(r.Context(), userID, newsletterID)
	if err != nil {
		h.internalError(w, "failed to check subscription", err)
		return
	}
	if !subscribed {
		respondMessage(w, http.StatusBadRequest, "User is not subscribed")
		return
	}

	if err := h.svc.Unsubscribe(r.Context(), userID, newsletterID); err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Unsubscription failed: "+err.Error())
			return
		}
		h.internalError(w, "failed to unsubscribe", err)
		return
	}

	metrics.SubscriptionChanges.WithLabelValues(metrics.ActionUnsubscribe).Inc()
	h.publish(ws.EventUnsubscribed, userID, newsletterID)
	respondMessage(w, http.StatusOK, "Unsubscription successful")
}

func (h *SubscriptionHandler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	newsletterID, err := queryID(r, "newsletterId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := queryID(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	subscribed, err := h.svc.IsSubscribed(r.Context(), userID, newsletterID)
	if err != nil {
		h.internalError(w, "failed to check subscription", err)
		return
	}
	respondJSON(w, http.StatusOK, subscribed)
}

func (h *SubscriptionHandler) SubscribersBefore(w http.ResponseWriter, r *http.Request) {
	h.subscribersByDate(w, r, h.svc.SubscribersBefore)
}

func (h *SubscriptionHandler) SubscribersAfter(w http.ResponseWriter, r *http.Request) {
	h.subscribersByDate(w, r, h.svc.SubscribersAfter)
}

// subscribersByDate answers both date queries. A date that fails to parse
// is reported as 400 with the parse error rather than as a server error.
func (h *SubscriptionHandler) subscribersByDate(
	w http.ResponseWriter,
	r *http.Request,
	query func(context.Context, int64, time.Time) ([]domain.UserView, error),
) {
	newsletterID, err := queryID(r, "newsletterId")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cutoff, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := query(r.Context(), newsletterID, cutoff)
	if err != nil {
		h.internalError(w, "failed to list subscribers", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *SubscriptionHandler) AllNewsletters(w http.ResponseWriter, r *http.Request) {
	newsletters, err := h.svc.AllNewsletters(r.Context())
	if err != nil {
		h.internalError(w, "failed to list newsletters", err)
		return
	}
	respondJSON(w, http.StatusOK, newsletters)
}

func (h *SubscriptionHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.svc.NewsletterWithSubscribers(r.Context(), id)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, "failed to get newsletter", err)
		return
	}
	respondJSON(w, http.StatusOK, n.View())
}

func (h *SubscriptionHandler) User(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, "failed to get user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// decodeRequest only rejects bodies that are malformed or missing an ID.
// IDs that match no row are left for the service to report as not found.
func (h *SubscriptionHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (userID, newsletterID int64, ok bool) {
	var req domain.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return 0, 0, false
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondError(w, http.StatusBadRequest, validationMessage(verrs[0]))
			return 0, 0, false
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return 0, 0, false
	}
	return *req.UserID, *req.NewsletterID, true
}

func (h *SubscriptionHandler) publish(eventType string, userID, newsletterID int64) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(ws.ActivityEvent{
		Type:         eventType,
		UserID:       userID,
		NewsletterID: newsletterID,
		Timestamp:    h.now().UTC(),
	})
}

func (h *SubscriptionHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	respondError(w, http.StatusInternalServerError, msg)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}

// Zone-less layouts are read as UTC. Fractional seconds are accepted after
// the seconds field without being named in the layout.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	domain.PublicationDateLayout,
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is not an ISO-8601 date-time", raw)
}
