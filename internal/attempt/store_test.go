package attempt_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type fixture struct {
	store  attempt.Store
	events *syncx.EventRepo // nil for the memory store
}

func fixtures(t *testing.T) map[string]fixture {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return map[string]fixture{
		"memory": {store: attempt.NewInMemoryStore()},
		"sql":    {store: attempt.NewSQLStore(h), events: syncx.NewEventRepo(h)},
	}
}

func input(user string, quizID int64, passed bool) attempt.RecordInput {
	score := 1
	if passed {
		score = 2
	}
	return attempt.RecordInput{
		UserID: user,
		Key:    quiz.Quiz{ID: quizID, PassingScore: 60},
		Result: grading.Result{
			Score: score, Total: 2, Percentage: float64(score) * 50, PassingScore: 60, Passed: passed,
			Questions: []grading.QuestionResult{
				{QuestionID: 10, Type: quiz.SingleChoice, Selected: []int64{101}, Correct: []int64{101}, IsCorrect: true},
				{QuestionID: 20, Type: quiz.MultipleChoice, Selected: []int64{201}, Correct: []int64{201, 203}, IsCorrect: passed},
			},
		},
		Elapsed: 90 * time.Second,
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec, err := attempt.NewRecorder(f.store).Record(ctx, input("u1", 7, true))
			require.NoError(t, err)
			assert.NotEmpty(t, rec.ID)

			got, err := f.store.GetAttempt(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec, got)
			assert.Equal(t, []int64{201}, got.Answers[1].UserAnswer)
			assert.Equal(t, []int64{201, 203}, got.Answers[1].CorrectAnswers)
			assert.Equal(t, 90*time.Second, got.Elapsed)

			_, err = f.store.GetAttempt(ctx, "nope")
			assert.True(t, errs.IsNotFound(err))

			if f.events != nil {
				evs, err := f.events.Since(ctx, 0, 10)
				require.NoError(t, err)
				require.Len(t, evs, 1)
				assert.Equal(t, syncx.TypeAttemptRecorded, evs[0].Type)
				assert.Equal(t, rec.ID, evs[0].Key)
			}
		})
	}
}

func TestRepeatedAttemptsShareOneActivity(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := attempt.NewRecorder(f.store)

			started, err := f.store.StartActivity(ctx, "u1", 7, time.UnixMilli(1000).UTC())
			require.NoError(t, err)
			assert.False(t, started.Completed)

			first, err := r.Record(ctx, input("u1", 7, false))
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
			second, err := r.Record(ctx, input("u1", 7, true))
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, second.ID)

			list, err := f.store.ListAttempts(ctx, attempt.ListOpts{UserID: "u1", QuizID: 7})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, second.ID, list[0].ID, "newest first")

			acts, err := f.store.ListActivities(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, acts, 1)
			assert.True(t, acts[0].Completed)
			assert.Equal(t, time.UnixMilli(1000).UTC(), acts[0].StartedAt, "start time is kept")
			require.NotNil(t, acts[0].CompletedAt)
			assert.Equal(t, second.AttemptedAt, *acts[0].CompletedAt)

			restart := time.Now().UTC().Truncate(time.Millisecond)
			again, err := f.store.StartActivity(ctx, "u1", 7, restart)
			require.NoError(t, err)
			assert.True(t, again.Completed, "starting again does not reset the marker")
			assert.Equal(t, time.UnixMilli(1000).UTC(), again.StartedAt)
			assert.Equal(t, restart, again.LastStartedAt)

			got, err := f.store.GetActivity(ctx, "u1", 7)
			require.NoError(t, err)
			assert.Equal(t, restart, got.LastStartedAt)
		})
	}
}

func TestRecordWithoutStartCreatesActivity(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec, err := attempt.NewRecorder(f.store).Record(ctx, input("u2", 3, true))
			require.NoError(t, err)
			act, err := f.store.GetActivity(ctx, "u2", 3)
			require.NoError(t, err)
			assert.True(t, act.Completed)
			assert.Equal(t, rec.AttemptedAt, *act.CompletedAt)
			assert.Equal(t, rec.AttemptedAt, act.LastStartedAt)

			_, err = f.store.GetActivity(ctx, "u2", 4)
			assert.True(t, errs.IsNotFound(err))
		})
	}
}

func TestFailedRecordWritesNothing(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := attempt.Build("fixed-id", input("u1", 7, true), time.Now())
			require.NoError(t, f.store.RecordAttempt(ctx, rec))

			dup := attempt.Build("fixed-id", input("u9", 8, true), time.Now())
			require.Error(t, f.store.RecordAttempt(ctx, dup))

			_, err := f.store.GetActivity(ctx, "u9", 8)
			assert.True(t, errs.IsNotFound(err))
			list, err := f.store.ListAttempts(ctx, attempt.ListOpts{UserID: "u9"})
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestConcurrentFirstSubmissions(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := attempt.NewRecorder(f.store)
			var wg sync.WaitGroup
			errc := make(chan error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := r.Record(ctx, input("racer", 11, true)); err != nil {
						errc <- err
					}
				}()
			}
			wg.Wait()
			close(errc)
			for err := range errc {
				t.Fatal(err)
			}

			acts, err := f.store.ListActivities(ctx, "racer")
			require.NoError(t, err)
			assert.Len(t, acts, 1)
			list, err := f.store.ListAttempts(ctx, attempt.ListOpts{UserID: "racer"})
			require.NoError(t, err)
			assert.Len(t, list, 8)
		})
	}
}

func TestListAttemptsPaging(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.UnixMilli(1_700_000_000_000).UTC()
			for i := 0; i < 5; i++ {
				rec := attempt.Build(fmt.Sprintf("a%d", i), input("pager", 1, true), base.Add(time.Duration(i)*time.Minute))
				require.NoError(t, f.store.RecordAttempt(ctx, rec))
			}
			page, err := f.store.ListAttempts(ctx, attempt.ListOpts{UserID: "pager", Limit: 2, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, "a3", page[0].ID)
			assert.Equal(t, "a2", page[1].ID)
		})
	}
}
