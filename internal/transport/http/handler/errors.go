package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/go-notify-nosql/internal/domain"
)

const (
	msgSent         = "Successfully sent notification."
	msgUserNotFound = "User not found."
	msgSendFailed   = "Failed to send notification."
)

// httpError maps a service error onto a status code and client-safe message.
// Unexpected errors are reported to Sentry and never echoed to the client.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, strings.TrimSuffix(err.Error(), ": "+domain.ErrBadRequest.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	default:
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		writeError(w, http.StatusInternalServerError, msgSendFailed)
	}
}
