package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/quizgen"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/util"
)

var validate = validator.New()

type createQuizRequest struct {
	Title        string          `json:"title" validate:"required"`
	PassingScore *int            `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	Questions    []quiz.Question `json:"questions" validate:"required,min=1"`
	Reference    string          `json:"reference"`
}

// POST /quizzes
func CreateQuizHandler(store quiz.Store, defaultPassing int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			returnError(w, r, err)
			return
		}
		z := quiz.Quiz{Title: req.Title, PassingScore: defaultPassing, Questions: req.Questions, Reference: req.Reference}
		if req.PassingScore != nil {
			z.PassingScore = *req.PassingScore
		}
		saveQuiz(w, r, store, z)
	}
}

// POST /quizzes/generated  { "content": "<provider output>", "passing_score": 60 }
func ImportGeneratedQuizHandler(store quiz.Store, defaultPassing int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content      string `json:"content" validate:"required"`
			PassingScore *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			returnError(w, r, err)
			return
		}
		passing := defaultPassing
		if req.PassingScore != nil {
			passing = *req.PassingScore
		}
		z, err := quizgen.Parse(req.Content, passing)
		if err != nil {
			util.ReturnHTTPMessage(w, r, http.StatusBadRequest, "badrequest", err.Error())
			return
		}
		saveQuiz(w, r, store, z)
	}
}

func saveQuiz(w http.ResponseWriter, r *http.Request, store quiz.Store, z quiz.Quiz) {
	created, err := store.CreateQuiz(r.Context(), z)
	if err != nil {
		returnError(w, r, err)
		return
	}
	glog.V(2).Infof("quiz %d %q created by %s", created.ID, created.Title, rbac.SubjectFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, created)
}

// GET /quizzes?q=...&limit=50&offset=0
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
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

// GET /quizzes/{quizID}. Correct-answer flags are stripped unless the caller
// may view the key.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "quizID"))
		if err != nil {
			returnError(w, r, err)
			return
		}
		z, err := store.AnswerKey(r.Context(), id)
		if err != nil {
			returnError(w, r, err)
			return
		}
		if !rbac.Can(r.Context(), rbac.PermQuizViewKey) {
			z = z.Public()
		}
		writeJSON(w, http.StatusOK, z)
	}
}

// DELETE /quizzes/{quizID}. Recorded attempts are kept.
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "quizID"))
		if err != nil {
			returnError(w, r, err)
			return
		}
		if err := store.DeleteQuiz(r.Context(), id); err != nil {
			returnError(w, r, err)
			return
		}
		glog.V(2).Infof("quiz %d deleted by %s", id, rbac.SubjectFromContext(r.Context()))
		util.ReturnHTTPMessage(w, r, http.StatusOK, "deleted", "quiz deleted")
	}
}
