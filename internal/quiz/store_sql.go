package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateQuiz(ctx context.Context, z Quiz) (Quiz, error) {
	if err := Validate(z); err != nil {
		return Quiz{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quiz{}, err
	}
	defer tx.Rollback()

	z.CreatedAt = now()
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO quizzes (title, passing_score, reference, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		z.Title, z.PassingScore, z.Reference, z.CreatedAt).Scan(&z.ID); err != nil {
		return Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	for i := range z.Questions {
		q := &z.Questions[i]
		q.QuizID = z.ID
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO questions (quiz_id, text, question_type, position) VALUES ($1,$2,$3,$4) RETURNING id`,
			q.QuizID, q.Text, string(q.Type), q.Position).Scan(&q.ID); err != nil {
			return Quiz{}, fmt.Errorf("insert question %d: %w", i, err)
		}
		for j := range q.Answers {
			a := &q.Answers[j]
			a.QuestionID = q.ID
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO answers (question_id, text, is_correct) VALUES ($1,$2,$3) RETURNING id`,
				a.QuestionID, a.Text, a.IsCorrect).Scan(&a.ID); err != nil {
				return Quiz{}, fmt.Errorf("insert answer %d/%d: %w", i, j, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return Quiz{}, err
	}
	sortQuestions(z.Questions)
	return z, nil
}

func (s *SQLStore) AnswerKey(ctx context.Context, id int64) (Quiz, error) {
	var z Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, passing_score, reference, created_at FROM quizzes WHERE id=$1`, id).
		Scan(&z.ID, &z.Title, &z.PassingScore, &z.Reference, &z.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, errs.NotFound("quiz", id)
	}
	if err != nil {
		return Quiz{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, question_type, position FROM questions WHERE quiz_id=$1 ORDER BY position, id`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()
	index := map[int64]int{}
	for rows.Next() {
		q := Question{QuizID: id}
		var typ string
		if err := rows.Scan(&q.ID, &q.Text, &typ, &q.Position); err != nil {
			return Quiz{}, err
		}
		q.Type = QuestionType(typ)
		index[q.ID] = len(z.Questions)
		z.Questions = append(z.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return Quiz{}, err
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.question_id, a.text, a.is_correct
		   FROM answers a JOIN questions q ON q.id = a.question_id
		  WHERE q.quiz_id=$1 ORDER BY a.id`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer arows.Close()
	for arows.Next() {
		var a Answer
		if err := arows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect); err != nil {
			return Quiz{}, err
		}
		if i, ok := index[a.QuestionID]; ok {
			z.Questions[i].Answers = append(z.Questions[i].Answers, a)
		}
	}
	return z, arows.Err()
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT z.id, z.title, z.passing_score, z.created_at,
	             (SELECT COUNT(*) FROM questions q WHERE q.quiz_id = z.id)
	        FROM quizzes z`
	args := []any{}
	if t := strings.TrimSpace(opts.Q); t != "" {
		q += ` WHERE LOWER(z.title) LIKE $1`
		args = append(args, "%"+strings.ToLower(t)+"%")
	}
	q += fmt.Sprintf(` ORDER BY z.id DESC LIMIT %d OFFSET %d`, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.PassingScore, &sm.CreatedAt, &sm.QuestionCount); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id int64) error {
	return s.execOne(ctx, "quiz", id, `DELETE FROM quizzes WHERE id=$1`, id)
}

func (s *SQLStore) UpdateAnswerText(ctx context.Context, answerID int64, text string) error {
	return s.execOne(ctx, "answer", answerID, `UPDATE answers SET text=$1 WHERE id=$2`, text, answerID)
}

func (s *SQLStore) DeleteAnswer(ctx context.Context, answerID int64) error {
	return s.execOne(ctx, "answer", answerID, `DELETE FROM answers WHERE id=$1`, answerID)
}

func (s *SQLStore) execOne(ctx context.Context, kind string, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound(kind, id)
	}
	return nil
}
