package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-notify-nosql/internal/application/notification"
	"github.com/go-notify-nosql/internal/domain"
	"github.com/go-notify-nosql/internal/pkg/validate"
)

// DirectRequest is the body of /follow, /like, /comment, /repost and /tag.
// Username is the actor, UserID the recipient and ActorID the actor's id.
type DirectRequest struct {
	Username string `json:"username" validate:"required"`
	UserID   string `json:"userID" validate:"required"`
	ActorID  string `json:"userID0"`
}

// PostRequest is the body of /post. UserID is the author's id and is optional.
type PostRequest struct {
	Username string `json:"username" validate:"required"`
	UserID   string `json:"userID"`
}

// EventHandler turns social-interaction requests into notification events.
type EventHandler struct {
	svc    notification.Service
	logger *slog.Logger
}

func NewEventHandler(svc notification.Service, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{svc: svc, logger: logger}
}

// Direct returns the handler for a single-recipient event type.
func (h *EventHandler) Direct(t domain.NotificationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DirectRequest
		if !decode(w, r, &req) {
			return
		}
		h.handle(w, r, domain.DirectEvent{
			Type:          t,
			ActorUsername: req.Username,
			ActorID:       req.ActorID,
			TargetUserID:  req.UserID,
		})
	}
}

func (h *EventHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decode(w, r, &req) {
		return
	}
	h.handle(w, r, domain.PostEvent{ActorUsername: req.Username, ActorID: req.UserID})
}

func (h *EventHandler) handle(w http.ResponseWriter, r *http.Request, ev domain.Event) {
	res, err := h.svc.Handle(r.Context(), ev)
	if err != nil {
		h.logger.Error("notification failed",
			"type", ev.Kind(),
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
		httpError(w, r, err)
		return
	}
	for _, rerr := range res.Recoverable {
		h.logger.Warn("notification partially applied",
			"type", ev.Kind(),
			"notification_id", res.RecordID,
			"request_id", middleware.GetReqID(r.Context()),
			"err", rerr,
		)
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msgSent})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
