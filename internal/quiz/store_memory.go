package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
)

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[int64]Quiz
	seq     int64
}

func NewInMemoryStore() Store {
	return &memoryStore{quizzes: map[int64]Quiz{}}
}

func (m *memoryStore) next() int64 {
	m.seq++
	return m.seq
}

func (m *memoryStore) CreateQuiz(_ context.Context, z Quiz) (Quiz, error) {
	if err := Validate(z); err != nil {
		return Quiz{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	z.ID = m.next()
	z.CreatedAt = now()
	qs := make([]Question, len(z.Questions))
	for i, q := range z.Questions {
		q.ID = m.next()
		q.QuizID = z.ID
		as := make([]Answer, len(q.Answers))
		for j, a := range q.Answers {
			a.ID = m.next()
			a.QuestionID = q.ID
			as[j] = a
		}
		q.Answers = as
		qs[i] = q
	}
	sortQuestions(qs)
	z.Questions = qs
	m.quizzes[z.ID] = z
	return clone(z), nil
}

func (m *memoryStore) AnswerKey(_ context.Context, id int64) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, errs.NotFound("quiz", id)
	}
	return clone(z), nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := make([]Summary, 0, len(m.quizzes))
	for _, z := range m.quizzes {
		if q != "" && !strings.Contains(strings.ToLower(z.Title), q) {
			continue
		}
		out = append(out, z.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return errs.NotFound("quiz", id)
	}
	delete(m.quizzes, id)
	return nil
}

func (m *memoryStore) UpdateAnswerText(_ context.Context, answerID int64, text string) error {
	return m.editAnswer(answerID, func(q *Question, j int) {
		q.Answers[j].Text = text
	})
}

func (m *memoryStore) DeleteAnswer(_ context.Context, answerID int64) error {
	return m.editAnswer(answerID, func(q *Question, j int) {
		q.Answers = append(q.Answers[:j:j], q.Answers[j+1:]...)
	})
}

func (m *memoryStore) editAnswer(answerID int64, fn func(q *Question, j int)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, z := range m.quizzes {
		for i := range z.Questions {
			for j := range z.Questions[i].Answers {
				if z.Questions[i].Answers[j].ID != answerID {
					continue
				}
				z = clone(z)
				fn(&z.Questions[i], j)
				m.quizzes[id] = z
				return nil
			}
		}
	}
	return errs.NotFound("answer", answerID)
}

func clone(z Quiz) Quiz {
	out := z
	out.Questions = make([]Question, len(z.Questions))
	for i, q := range z.Questions {
		q.Answers = append([]Answer(nil), q.Answers...)
		out.Questions[i] = q
	}
	return out
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
