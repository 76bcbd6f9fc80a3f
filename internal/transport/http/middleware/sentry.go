package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Sentry attaches a per-request hub tagged with the request id and reports
// panics before re-raising them to the recoverer.
func Sentry() func(http.Handler) http.Handler {
	sh := sentryhttp.New(sentryhttp.Options{Repanic: true})
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				if id := chimiddleware.GetReqID(r.Context()); id != "" {
					hub.Scope().SetTag("request_id", id)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
	return func(next http.Handler) http.Handler {
		return sh.Handle(tag(next))
	}
}
