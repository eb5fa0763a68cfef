package quizsvc

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

type env struct {
	svc      *Service
	attempts attempt.Store
	key      quiz.Quiz
}

func envs(t *testing.T) map[string]env {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	out := map[string]env{}
	for name, pair := range map[string]struct {
		q quiz.Store
		a attempt.Store
	}{
		"memory": {quiz.NewInMemoryStore(), attempt.NewInMemoryStore()},
		"sql":    {quiz.NewSQLStore(h), attempt.NewSQLStore(h)},
	} {
		key, err := pair.q.CreateQuiz(context.Background(), scenarioQuiz())
		require.NoError(t, err)
		out[name] = env{svc: New(pair.q, pair.a, nil), attempts: pair.a, key: key}
	}
	return out
}

func scenarioQuiz() quiz.Quiz {
	return quiz.Quiz{
		Title: "scenario", PassingScore: 50, Reference: "Review chapter 2",
		Questions: []quiz.Question{
			{Text: "Q1", Type: quiz.SingleChoice, Position: 1, Answers: []quiz.Answer{{Text: "A1", IsCorrect: true}, {Text: "A2"}}},
			{Text: "Q2", Type: quiz.MultipleChoice, Position: 2, Answers: []quiz.Answer{
				{Text: "B1", IsCorrect: true}, {Text: "B2"}, {Text: "B3", IsCorrect: true}, {Text: "B4"},
			}},
		},
	}
}

func TestSubmitScenario(t *testing.T) {
	for name, e := range envs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			q1, q2 := e.key.Questions[0], e.key.Questions[1]

			out, err := e.svc.Submit(ctx, SubmitInput{
				QuizID: e.key.ID, UserID: "learner",
				Raw: grading.RawSubmission{
					q1.ID: grading.Single(id(q1.Answers[0].ID)),
					q2.ID: grading.Multi(id(q2.Answers[0].ID), id(q2.Answers[2].ID)),
				},
				Elapsed: 42 * time.Second,
			})
			require.NoError(t, err)
			assert.Equal(t, 2, out.Score)
			assert.Equal(t, 2, out.Total)
			assert.Equal(t, 100.0, out.Percentage)
			assert.True(t, out.Passed)
			assert.Equal(t, 42*time.Second, out.Elapsed)
			assert.Empty(t, out.Reference, "no reference after a pass")
			require.Len(t, out.Review, 2)
			assert.Equal(t, "A1", out.Review[0].UserAnswers[0].Text)

			out, err = e.svc.Submit(ctx, SubmitInput{
				QuizID: e.key.ID, UserID: "learner",
				Raw: grading.RawSubmission{
					q1.ID: grading.Single(id(q1.Answers[1].ID)),
					q2.ID: grading.Multi(id(q2.Answers[0].ID)),
				},
			})
			require.NoError(t, err)
			assert.Equal(t, 0, out.Score)
			assert.Equal(t, 0.0, out.Percentage)
			assert.False(t, out.Passed)
			assert.Equal(t, "Review chapter 2", out.Reference)

			list, err := e.svc.Attempts(ctx, attempt.ListOpts{UserID: "learner"})
			require.NoError(t, err)
			assert.Len(t, list, 2)
			acts, err := e.svc.Activities(ctx, "learner")
			require.NoError(t, err)
			require.Len(t, acts, 1)
			assert.True(t, acts[0].Completed)

			progress, err := e.svc.Progress(ctx, "learner")
			require.NoError(t, err)
			require.Len(t, progress, 1)
			assert.Equal(t, 2, progress[0].Attempts)
			assert.True(t, progress[0].EverPassed)
		})
	}
}

func TestSubmitMissingAnswerPersistsNothing(t *testing.T) {
	for name, e := range envs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			q1, q2 := e.key.Questions[0], e.key.Questions[1]
			_, err := e.svc.Submit(ctx, SubmitInput{
				QuizID: e.key.ID, UserID: "learner",
				Raw: grading.RawSubmission{q1.ID: grading.Single(id(q1.Answers[0].ID))},
			})
			var missing errs.MissingAnswerError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, q2.ID, missing.QuestionID)

			list, err := e.svc.Attempts(ctx, attempt.ListOpts{UserID: "learner"})
			require.NoError(t, err)
			assert.Empty(t, list)
			acts, err := e.svc.Activities(ctx, "learner")
			require.NoError(t, err)
			assert.Empty(t, acts)
		})
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	for name, e := range envs(t) {
		t.Run(name, func(t *testing.T) {
			_, err := e.svc.Submit(context.Background(), SubmitInput{QuizID: 4242, UserID: "u"})
			assert.True(t, errs.IsNotFound(err))
			_, err = e.svc.Start(context.Background(), 4242, "u")
			assert.True(t, errs.IsNotFound(err))
		})
	}
}

func TestElapsedFromStart(t *testing.T) {
	for name, e := range envs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := time.UnixMilli(1_800_000_000_000).UTC()
			e.svc.now = func() time.Time { return clock }
			_, err := e.svc.Start(ctx, e.key.ID, "timer")
			require.NoError(t, err)

			clock = clock.Add(3 * time.Minute)
			q1, q2 := e.key.Questions[0], e.key.Questions[1]
			out, err := e.svc.Submit(ctx, SubmitInput{
				QuizID: e.key.ID, UserID: "timer",
				Raw: grading.RawSubmission{
					q1.ID: grading.Single(id(q1.Answers[0].ID)),
					q2.ID: grading.Multi(),
				},
			})
			require.NoError(t, err)
			assert.Equal(t, 3*time.Minute, out.Elapsed)

			rv, err := e.svc.Review(ctx, out.AttemptID)
			require.NoError(t, err)
			assert.Equal(t, out.AttemptID, rv.AttemptID)
			assert.Empty(t, rv.Entries[1].UserAnswerIDs)
		})
	}
}

func TestElapsedFromLatestStart(t *testing.T) {
	for name, e := range envs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := time.UnixMilli(1_800_000_000_000).UTC()
			e.svc.now = func() time.Time { return clock }
			q1, q2 := e.key.Questions[0], e.key.Questions[1]
			submit := func() Outcome {
				out, err := e.svc.Submit(ctx, SubmitInput{
					QuizID: e.key.ID, UserID: "again",
					Raw: grading.RawSubmission{
						q1.ID: grading.Single(id(q1.Answers[0].ID)),
						q2.ID: grading.Multi(id(q2.Answers[0].ID)),
					},
				})
				require.NoError(t, err)
				return out
			}

			_, err := e.svc.Start(ctx, e.key.ID, "again")
			require.NoError(t, err)
			clock = clock.Add(2 * time.Minute)
			assert.Equal(t, 2*time.Minute, submit().Elapsed)

			clock = clock.Add(24 * time.Hour)
			act, err := e.svc.Start(ctx, e.key.ID, "again")
			require.NoError(t, err)
			assert.Equal(t, time.UnixMilli(1_800_000_000_000).UTC(), act.StartedAt, "first start is kept")
			assert.Equal(t, clock, act.LastStartedAt)

			clock = clock.Add(time.Minute)
			assert.Equal(t, time.Minute, submit().Elapsed)

			// no new start since the last completion
			clock = clock.Add(5 * time.Minute)
			assert.Equal(t, time.Duration(0), submit().Elapsed)
		})
	}
}
