// Package review rebuilds a readable comparison of a past attempt. Answer ids
// come from the stored record; texts are resolved against the current key.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type Choice struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type Entry struct {
	QuestionID     int64             `json:"question_id"`
	QuestionText   string            `json:"question_text"`
	Type           quiz.QuestionType `json:"type"`
	UserAnswerIDs  []int64           `json:"user_answer_ids"`
	UserAnswers    []Choice          `json:"user_answers"`
	CorrectIDs     []int64           `json:"correct_answer_ids"`
	CorrectAnswers []Choice          `json:"correct_answers"`
	Answers        []Choice          `json:"answers"`
	Correct        bool              `json:"correct"`
}

type Review struct {
	AttemptID  string  `json:"attempt_id"`
	QuizID     int64   `json:"quiz_id"`
	QuizTitle  string  `json:"quiz_title"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Entries    []Entry `json:"entries"`
}

type Assembler struct {
	quizzes  quiz.Store
	attempts attempt.Store
}

func NewAssembler(quizzes quiz.Store, attempts attempt.Store) *Assembler {
	return &Assembler{quizzes: quizzes, attempts: attempts}
}

// ByID loads the attempt and assembles its review.
func (a *Assembler) ByID(ctx context.Context, attemptID string) (Review, error) {
	rec, err := a.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return Review{}, err
	}
	return a.Assemble(ctx, rec)
}

// Assemble joins rec against the current answer key. Ids deleted from the key
// since the attempt are dropped from the text lists rather than failing.
func (a *Assembler) Assemble(ctx context.Context, rec attempt.Record) (Review, error) {
	key, err := a.quizzes.AnswerKey(ctx, rec.QuizID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return Review{}, fmt.Errorf("review %s: %w", rec.ID, err)
	}
	if err != nil {
		glog.V(2).Infof("review %s: quiz %d no longer exists", rec.ID, rec.QuizID)
	}
	return Build(rec, key), nil
}

// Build is the pure join used by Assemble.
func Build(rec attempt.Record, key quiz.Quiz) Review {
	rv := Review{
		AttemptID:  rec.ID,
		QuizID:     rec.QuizID,
		QuizTitle:  key.Title,
		Score:      rec.Score,
		Total:      rec.Total,
		Percentage: rec.Percentage,
		Passed:     rec.Passed,
		Entries:    make([]Entry, 0, len(rec.Answers)),
	}
	for _, snap := range rec.Answers {
		e := Entry{
			QuestionID:    snap.QuestionID,
			Type:          snap.Type,
			UserAnswerIDs: append([]int64{}, snap.UserAnswer...),
			CorrectIDs:    append([]int64{}, snap.CorrectAnswers...),
			Answers:       []Choice{},
			Correct:       snap.Correct,
		}
		q, ok := key.Question(snap.QuestionID)
		if ok {
			e.QuestionText = q.Text
			for _, ans := range q.Answers {
				e.Answers = append(e.Answers, Choice{ID: ans.ID, Text: ans.Text})
			}
		}
		e.UserAnswers = resolve(q, snap.UserAnswer)
		e.CorrectAnswers = resolve(q, snap.CorrectAnswers)
		rv.Entries = append(rv.Entries, e)
	}
	return rv
}

func resolve(q quiz.Question, ids []int64) []Choice {
	out := make([]Choice, 0, len(ids))
	for _, id := range ids {
		if ans, ok := q.Lookup(id); ok {
			out = append(out, Choice{ID: id, Text: ans.Text})
		}
	}
	return out
}
