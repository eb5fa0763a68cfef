package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func errDuplicate(id string) error { return fmt.Errorf("attempt %s already recorded", id) }

// RecordAttempt inserts the attempt, upserts the activity marker on its
// (user_id, quiz_id) key and appends an event, all in one transaction.
func (s *SQLStore) RecordAttempt(ctx context.Context, rec Record) error {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return err
	}
	ev, err := syncx.NewEvent(syncx.TypeAttemptRecorded, rec.ID, map[string]any{
		"quiz_id": rec.QuizID,
		"user_id": rec.UserID,
		"score":   rec.Score,
		"total":   rec.Total,
		"passed":  rec.Passed,
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	at := rec.AttemptedAt.UnixMilli()
	if _, err := tx.ExecContext(ctx, `INSERT INTO attempts
		(id, quiz_id, user_id, score, total, percentage, passing_score, passed, elapsed_ms, attempted_at, answers_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.QuizID, rec.UserID, rec.Score, rec.Total, rec.Percentage, rec.PassingScore,
		rec.Passed, rec.Elapsed.Milliseconds(), at, string(answers)); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO quiz_activity (user_id, quiz_id, started_at, last_started_at, completed, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET completed=EXCLUDED.completed, completed_at=EXCLUDED.completed_at`,
		rec.UserID, rec.QuizID, at, at, true, at); err != nil {
		return fmt.Errorf("upsert activity: %w", err)
	}
	if err := syncx.Append(ctx, tx, ev); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM attempts WHERE id=$1`, id)
	rec, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errs.NotFound("attempt", id)
	}
	return rec, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts ListOpts) ([]Record, error) {
	where := []string{}
	args := []any{}
	if opts.QuizID != 0 {
		args = append(args, opts.QuizID)
		where = append(where, fmt.Sprintf("quiz_id=$%d", len(args)))
	}
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	q := `SELECT ` + attemptCols + ` FROM attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q += fmt.Sprintf(" ORDER BY attempted_at DESC, id LIMIT %d OFFSET %d", limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) StartActivity(ctx context.Context, userID string, quizID int64, at time.Time) (Activity, error) {
	ms := at.UnixMilli()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO quiz_activity (user_id, quiz_id, started_at, last_started_at, completed)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, quiz_id) DO UPDATE SET last_started_at=EXCLUDED.last_started_at`,
		userID, quizID, ms, ms, false); err != nil {
		return Activity{}, err
	}
	return s.GetActivity(ctx, userID, quizID)
}

func (s *SQLStore) GetActivity(ctx context.Context, userID string, quizID int64) (Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityCols+` FROM quiz_activity WHERE user_id=$1 AND quiz_id=$2`, userID, quizID)
	act, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Activity{}, errs.NotFound("activity", quizID)
	}
	return act, err
}

func (s *SQLStore) ListActivities(ctx context.Context, userID string) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+activityCols+` FROM quiz_activity WHERE user_id=$1 ORDER BY started_at DESC, quiz_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Activity{}
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, rows.Err()
}

const (
	attemptCols  = `id, quiz_id, user_id, score, total, percentage, passing_score, passed, elapsed_ms, attempted_at, answers_json`
	activityCols = `user_id, quiz_id, started_at, last_started_at, completed, completed_at`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (Record, error) {
	var rec Record
	var elapsedMS, atMS int64
	var answers string
	if err := row.Scan(&rec.ID, &rec.QuizID, &rec.UserID, &rec.Score, &rec.Total, &rec.Percentage,
		&rec.PassingScore, &rec.Passed, &elapsedMS, &atMS, &answers); err != nil {
		return Record{}, err
	}
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	rec.AttemptedAt = time.UnixMilli(atMS).UTC()
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return Record{}, fmt.Errorf("attempt %s answers: %w", rec.ID, err)
	}
	return rec, nil
}

func scanActivity(row scanner) (Activity, error) {
	var act Activity
	var startedMS, lastMS int64
	var completedMS sql.NullInt64
	if err := row.Scan(&act.UserID, &act.QuizID, &startedMS, &lastMS, &act.Completed, &completedMS); err != nil {
		return Activity{}, err
	}
	act.StartedAt = time.UnixMilli(startedMS).UTC()
	act.LastStartedAt = time.UnixMilli(lastMS).UTC()
	if completedMS.Valid {
		t := time.UnixMilli(completedMS.Int64).UTC()
		act.CompletedAt = &t
	}
	return act, nil
}
