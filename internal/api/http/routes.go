package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/quizsvc"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// Mount registers the quiz API on r. The caller installs authentication so
// that subject and role are in the request context.
func Mount(r chi.Router, quizzes quiz.Store, svc *quizsvc.Service, defaultPassing int) {
	r.Route("/quizzes", func(qr chi.Router) {
		qr.With(rbac.Require(rbac.PermQuizCreate)).Post("/", CreateQuizHandler(quizzes, defaultPassing))
		qr.With(rbac.Require(rbac.PermQuizCreate)).Post("/generated", ImportGeneratedQuizHandler(quizzes, defaultPassing))
		qr.With(rbac.Require(rbac.PermQuizView)).Get("/", ListQuizzesHandler(quizzes))

		qr.Route("/{quizID}", func(one chi.Router) {
			one.With(rbac.Require(rbac.PermQuizView)).Get("/", GetQuizHandler(quizzes))
			one.With(rbac.Require(rbac.PermQuizDelete)).Delete("/", DeleteQuizHandler(quizzes))
			one.With(rbac.Require(rbac.PermAttemptCreate)).Post("/start", StartQuizHandler(svc))
			one.With(rbac.Require(rbac.PermAttemptSubmit)).Post("/submit", SubmitQuizHandler(svc))
		})
	})

	r.Route("/attempts", func(ar chi.Router) {
		ar.Use(rbac.RequireAny(rbac.PermAttemptViewOwn, rbac.PermAttemptViewAll))
		ar.Get("/", ListAttemptsHandler(svc))
		ar.Get("/{attemptID}", GetAttemptHandler(svc))
		ar.Get("/{attemptID}/review", ReviewAttemptHandler(svc))
	})

	r.With(rbac.Require(rbac.PermProgressViewOwn)).Get("/activity", ListActivityHandler(svc))
	r.With(rbac.Require(rbac.PermProgressViewOwn)).Get("/progress", ProgressHandler(svc))
}
