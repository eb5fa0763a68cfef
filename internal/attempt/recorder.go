package attempt

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type RecordInput struct {
	UserID  string
	Key     quiz.Quiz
	Result  grading.Result
	Elapsed time.Duration
	// At is the attempt time; zero means the recorder's clock.
	At time.Time
}

// Recorder turns a grading result into one persisted Record.
type Recorder struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Record builds and appends a new attempt. Repeated attempts by the same user
// are independent rows; only the activity marker is shared.
func (r *Recorder) Record(ctx context.Context, in RecordInput) (Record, error) {
	if in.UserID == "" {
		return Record{}, fmt.Errorf("record attempt: user id required")
	}
	at := in.At
	if at.IsZero() {
		at = r.now()
	}
	rec := Build(r.newID(), in, at.UTC())
	if err := r.store.RecordAttempt(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("record attempt for quiz %d: %w", in.Key.ID, err)
	}
	glog.V(2).Infof("recorded attempt %s user=%s quiz=%d score=%d/%d passed=%t",
		rec.ID, rec.UserID, rec.QuizID, rec.Score, rec.Total, rec.Passed)
	return rec, nil
}

// Build assembles a record from copied values only. Times are kept at
// millisecond precision, the resolution the SQL store persists.
func Build(id string, in RecordInput, at time.Time) Record {
	res := in.Result
	rec := Record{
		ID:           id,
		UserID:       in.UserID,
		QuizID:       in.Key.ID,
		Score:        res.Score,
		Total:        res.Total,
		Percentage:   res.Percentage,
		PassingScore: res.PassingScore,
		Passed:       res.Passed,
		Elapsed:      in.Elapsed.Truncate(time.Millisecond),
		AttemptedAt:  at.Truncate(time.Millisecond),
		Answers:      make([]AnswerSnapshot, 0, len(res.Questions)),
	}
	for _, q := range res.Questions {
		rec.Answers = append(rec.Answers, AnswerSnapshot{
			QuestionID:     q.QuestionID,
			Type:           q.Type,
			UserAnswer:     append([]int64{}, q.Selected...),
			CorrectAnswers: append([]int64{}, q.Correct...),
			Correct:        q.IsCorrect,
		})
	}
	return rec
}

// Summarize folds a user's attempts into per-quiz progress, most recent quiz first.
func Summarize(records []Record) []Progress {
	byQuiz := map[int64]*Progress{}
	for _, r := range records {
		p, ok := byQuiz[r.QuizID]
		if !ok {
			p = &Progress{QuizID: r.QuizID}
			byQuiz[r.QuizID] = p
		}
		p.Attempts++
		if p.Attempts == 1 || r.Percentage > p.BestPercent {
			p.BestScore, p.BestPercent, p.Total = r.Score, r.Percentage, r.Total
		}
		p.EverPassed = p.EverPassed || r.Passed
		if r.AttemptedAt.After(p.LastAttemptAt) {
			p.LastAttemptAt = r.AttemptedAt
		}
	}
	out := make([]Progress, 0, len(byQuiz))
	for _, p := range byQuiz {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAttemptAt.Equal(out[j].LastAttemptAt) {
			return out[i].LastAttemptAt.After(out[j].LastAttemptAt)
		}
		return out[i].QuizID < out[j].QuizID
	})
	return out
}
