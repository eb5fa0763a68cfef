// Package quizsvc wires the answer key, normalizer, grader, recorder and
// review assembler into the submit flow served to callers.
package quizsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/review"
)

type SubmitInput struct {
	QuizID int64
	UserID string
	Raw    grading.RawSubmission
	// Elapsed is passed through unchanged; zero means "derive from the
	// most recent start when it is newer than the last completion".
	Elapsed time.Duration
}

type Outcome struct {
	AttemptID  string         `json:"attempt_id"`
	Score      int            `json:"score"`
	Total      int            `json:"total"`
	Percentage float64        `json:"percentage"`
	Passed     bool           `json:"passed"`
	Elapsed    time.Duration  `json:"elapsed_ns"`
	Review     []review.Entry `json:"per_question_review"`
	// Reference is the quiz's study material, returned only on a failed attempt.
	Reference   string               `json:"reference,omitempty"`
	Diagnostics []grading.Diagnostic `json:"-"`
}

type Service struct {
	quizzes  quiz.Store
	attempts attempt.Store
	grader   grading.Grader
	recorder *attempt.Recorder
	reviews  *review.Assembler
	now      func() time.Time
}

func New(quizzes quiz.Store, attempts attempt.Store, grader grading.Grader) *Service {
	if grader == nil {
		grader = grading.NewDefaultGrader()
	}
	return &Service{
		quizzes:  quizzes,
		attempts: attempts,
		grader:   grader,
		recorder: attempt.NewRecorder(attempts),
		reviews:  review.NewAssembler(quizzes, attempts),
		now:      time.Now,
	}
}

// Start records the first time a user opened a quiz. Calling it again is a no-op.
func (s *Service) Start(ctx context.Context, quizID int64, userID string) (attempt.Activity, error) {
	if _, err := s.quizzes.AnswerKey(ctx, quizID); err != nil {
		return attempt.Activity{}, err
	}
	return s.attempts.StartActivity(ctx, userID, quizID, s.now().UTC().Truncate(time.Millisecond))
}

// Submit grades raw against the quiz and records the attempt. Nothing is
// persisted when the submission is incomplete or malformed.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Outcome, error) {
	key, err := s.quizzes.AnswerKey(ctx, in.QuizID)
	if err != nil {
		return Outcome{}, err
	}
	sub, err := grading.Normalize(key, in.Raw)
	if err != nil {
		return Outcome{}, err
	}
	res, err := s.grader.Grade(key, sub)
	if err != nil {
		return Outcome{}, err
	}

	now := s.now()
	elapsed := in.Elapsed
	if elapsed <= 0 {
		elapsed = s.elapsedSinceStart(ctx, in.UserID, in.QuizID, now)
	}

	rec, err := s.recorder.Record(ctx, attempt.RecordInput{
		UserID:  in.UserID,
		Key:     key,
		Result:  res,
		Elapsed: elapsed,
		At:      now,
	})
	if err != nil {
		return Outcome{}, err
	}

	rv := review.Build(rec, key)
	out := Outcome{
		AttemptID:   rec.ID,
		Score:       rec.Score,
		Total:       rec.Total,
		Percentage:  rec.Percentage,
		Passed:      rec.Passed,
		Elapsed:     rec.Elapsed,
		Review:      rv.Entries,
		Diagnostics: res.Diagnostics,
	}
	if !rec.Passed {
		out.Reference = key.Reference
	}
	return out, nil
}

// elapsedSinceStart measures from the latest start of the quiz. A start that is
// not newer than the last completion belongs to an earlier attempt.
func (s *Service) elapsedSinceStart(ctx context.Context, userID string, quizID int64, now time.Time) time.Duration {
	act, err := s.attempts.GetActivity(ctx, userID, quizID)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			glog.Warningf("activity lookup for user=%s quiz=%d: %v", userID, quizID, err)
		}
		return 0
	}
	start := act.LastStartedAt
	if start.IsZero() || (act.CompletedAt != nil && !start.After(*act.CompletedAt)) {
		return 0
	}
	if d := now.Sub(start); d > 0 {
		return d
	}
	return 0
}

func (s *Service) Review(ctx context.Context, attemptID string) (review.Review, error) {
	return s.reviews.ByID(ctx, attemptID)
}

func (s *Service) Attempt(ctx context.Context, attemptID string) (attempt.Record, error) {
	return s.attempts.GetAttempt(ctx, attemptID)
}

func (s *Service) Attempts(ctx context.Context, opts attempt.ListOpts) ([]attempt.Record, error) {
	return s.attempts.ListAttempts(ctx, opts)
}

func (s *Service) Activities(ctx context.Context, userID string) ([]attempt.Activity, error) {
	return s.attempts.ListActivities(ctx, userID)
}

// Progress summarizes every attempt the user has made, per quiz.
func (s *Service) Progress(ctx context.Context, userID string) ([]attempt.Progress, error) {
	var all []attempt.Record
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		page, err := s.attempts.ListAttempts(ctx, attempt.ListOpts{UserID: userID, Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("progress for %s: %w", userID, err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}
	return attempt.Summarize(all), nil
}
