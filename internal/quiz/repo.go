package quiz

import "context"

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

// Store is the read side used by grading and review plus the authoring
// operations used by the transport layer.
type Store interface {
	// CreateQuiz persists a new quiz; the store assigns quiz, question and answer ids.
	CreateQuiz(ctx context.Context, z Quiz) (Quiz, error)
	// AnswerKey returns the full quiz with questions in position order.
	AnswerKey(ctx context.Context, id int64) (Quiz, error)
	ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, error)
	DeleteQuiz(ctx context.Context, id int64) error

	UpdateAnswerText(ctx context.Context, answerID int64, text string) error
	DeleteAnswer(ctx context.Context, answerID int64) error
}
