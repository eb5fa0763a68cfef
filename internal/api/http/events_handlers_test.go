package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/quizsvc"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

func TestEventsFeed(t *testing.T) {
	h, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	qs := quiz.NewSQLStore(h)
	svc := quizsvc.New(qs, attempt.NewSQLStore(h), nil)
	a := auth.NewAuthService("test-secret")
	r := chi.NewRouter()
	r.Use(auth.JWTMiddleware(a))
	Mount(r, qs, svc, 50)
	MountEvents(r, syncx.NewEventRepo(h))

	do := func(user, role, method, path, body string) *httptest.ResponseRecorder {
		tok, err := a.IssueJWT(user, role)
		require.NoError(t, err)
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do("teach", "teacher", http.MethodPost, "/quizzes", quizBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	z := decode[quiz.Quiz](t, rec)
	q1, q2 := z.Questions[0], z.Questions[1]

	body := fmt.Sprintf(`{"answers": {"%d": "%d", "%d": []}}`, q1.ID, q1.Answers[1].ID, q2.ID)
	rec = do("alice", "student", http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", z.ID), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[quizsvc.Outcome](t, rec)
	assert.Equal(t, 0, out.Score)
	assert.False(t, out.Passed)
	assert.Equal(t, "Atlas, chapter 1", out.Reference)

	assert.Equal(t, http.StatusForbidden, do("alice", "student", http.MethodGet, "/events", "").Code)

	rec = do("teach", "teacher", http.MethodGet, "/events?after=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	evs := decode[[]syncx.Event](t, rec)
	require.Len(t, evs, 1)
	assert.Equal(t, syncx.TypeAttemptRecorded, evs[0].Type)
	assert.Equal(t, out.AttemptID, evs[0].Key)

	rec = do("teach", "teacher", http.MethodGet, fmt.Sprintf("/events?after=%d", evs[0].Seq), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]syncx.Event](t, rec))

	assert.Equal(t, http.StatusBadRequest, do("teach", "teacher", http.MethodGet, "/events?after=x", "").Code)
}
