package attempt

import (
	"context"
	"time"
)

type ListOpts struct {
	QuizID int64  // 0 = any quiz
	UserID string // "" = any user
	Limit  int
	Offset int
}

// Store persists attempt records (append-only) and activity markers.
type Store interface {
	// RecordAttempt appends rec and marks the (user, quiz) activity completed at
	// rec.AttemptedAt, creating the marker if absent. Both happen or neither does.
	RecordAttempt(ctx context.Context, rec Record) error
	GetAttempt(ctx context.Context, id string) (Record, error)
	// ListAttempts returns newest first.
	ListAttempts(ctx context.Context, opts ListOpts) ([]Record, error)

	// StartActivity creates the marker if absent, otherwise moves only its
	// LastStartedAt, and returns the stored marker.
	StartActivity(ctx context.Context, userID string, quizID int64, at time.Time) (Activity, error)
	GetActivity(ctx context.Context, userID string, quizID int64) (Activity, error)
	ListActivities(ctx context.Context, userID string) ([]Activity, error)
}
