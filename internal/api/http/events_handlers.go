package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
	"github.com/mind-engage/mindengage-quiz/internal/util"
)

// GET /events?after=<seq>&limit=100
// Feed of recorded attempts for downstream consumers such as gradebooks.
func ListEventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var after int64
		if s := r.URL.Query().Get("after"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil || v < 0 {
				util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", "bad after")
				return
			}
			after = v
		}
		list, err := events.Since(r.Context(), after, parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// MountEvents exposes the event log to callers holding attempt:view-all.
func MountEvents(r chi.Router, events *syncx.EventRepo) {
	r.With(rbac.Require(rbac.PermAttemptViewAll)).Get("/events", ListEventsHandler(events))
}
