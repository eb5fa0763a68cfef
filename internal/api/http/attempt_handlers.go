package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quizsvc"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/util"
)

// POST /quizzes/{quizID}/start
func StartQuizHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "quizID"))
		if err != nil {
			returnError(w, r, err)
			return
		}
		act, err := svc.Start(r.Context(), id, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, act)
	}
}

type submitRequest struct {
	Answers    grading.RawSubmission `json:"answers" validate:"required"`
	ElapsedSec float64               `json:"elapsed_sec" validate:"gte=0"`
}

// POST /quizzes/{quizID}/submit  { "answers": {"10": "101", "20": ["201","203"]}, "elapsed_sec": 42 }
func SubmitQuizHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "quizID"))
		if err != nil {
			returnError(w, r, err)
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", "bad json: "+err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			returnError(w, r, err)
			return
		}
		out, err := svc.Submit(r.Context(), quizsvc.SubmitInput{
			QuizID:  id,
			UserID:  rbac.SubjectFromContext(r.Context()),
			Raw:     req.Answers,
			Elapsed: time.Duration(req.ElapsedSec * float64(time.Second)),
		})
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /attempts?quiz_id=...&user_id=...&limit=50&offset=0
// Without attempt:view-all the user_id filter is forced to the caller.
func ListAttemptsHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if !rbac.Can(r.Context(), rbac.PermAttemptViewAll) {
			userID = rbac.SubjectFromContext(r.Context())
		}
		var quizID int64
		if s := r.URL.Query().Get("quiz_id"); s != "" {
			id, err := parseID(s)
			if err != nil {
				returnError(w, r, err)
				return
			}
			quizID = id
		}
		list, err := svc.Attempts(r.Context(), attempt.ListOpts{
			QuizID: quizID,
			UserID: userID,
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := ownAttempt(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// GET /attempts/{attemptID}/review
func ReviewAttemptHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := ownAttempt(w, r, svc)
		if !ok {
			return
		}
		rv, err := svc.Review(r.Context(), rec.ID)
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rv)
	}
}

// ownAttempt loads the attempt in the URL and checks the caller may see it.
func ownAttempt(w http.ResponseWriter, r *http.Request, svc *quizsvc.Service) (attempt.Record, bool) {
	rec, err := svc.Attempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		returnError(w, r, err)
		return attempt.Record{}, false
	}
	if rec.UserID != rbac.SubjectFromContext(r.Context()) && !rbac.Can(r.Context(), rbac.PermAttemptViewAll) {
		util.ReturnHTTPMessage(w, r, http.StatusForbidden, "forbidden", "not your attempt")
		return attempt.Record{}, false
	}
	return rec, true
}

// GET /activity
func ListActivityHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Activities(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /progress
func ProgressHandler(svc *quizsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Progress(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			returnError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
