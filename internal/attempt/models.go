package attempt

import (
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// AnswerSnapshot copies one question's ids at grading time so the record stays
// valid after the answer key is edited.
type AnswerSnapshot struct {
	QuestionID     int64             `json:"question_id"`
	Type           quiz.QuestionType `json:"type"`
	UserAnswer     []int64           `json:"user_answer"`
	CorrectAnswers []int64           `json:"correct_answers"`
	Correct        bool              `json:"correct"`
}

// Record is the immutable outcome of one graded submission.
type Record struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	QuizID       int64            `json:"quiz_id"`
	Score        int              `json:"score"`
	Total        int              `json:"total"`
	Percentage   float64          `json:"percentage"`
	PassingScore int              `json:"passing_score"`
	Passed       bool             `json:"passed"`
	Elapsed      time.Duration    `json:"elapsed_ns"`
	AttemptedAt  time.Time        `json:"attempted_at"`
	Answers      []AnswerSnapshot `json:"answers"`
}

// Activity is the mutable per-(user, quiz) marker. StartedAt is the first
// start and never moves; LastStartedAt follows every start.
type Activity struct {
	UserID        string     `json:"user_id"`
	QuizID        int64      `json:"quiz_id"`
	StartedAt     time.Time  `json:"started_at"`
	LastStartedAt time.Time  `json:"last_started_at"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Progress summarizes a user's attempts on one quiz.
type Progress struct {
	QuizID        int64     `json:"quiz_id"`
	Attempts      int       `json:"attempts"`
	BestScore     int       `json:"best_score"`
	BestPercent   float64   `json:"best_percentage"`
	Total         int       `json:"total"`
	EverPassed    bool      `json:"ever_passed"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}
