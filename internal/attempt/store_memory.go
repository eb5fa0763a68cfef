package attempt

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
)

type activityKey struct {
	user string
	quiz int64
}

type memoryStore struct {
	mu         sync.RWMutex
	attempts   []Record
	byID       map[string]int
	activities map[activityKey]Activity
}

func NewInMemoryStore() Store {
	return &memoryStore{
		byID:       map[string]int{},
		activities: map[activityKey]Activity{},
	}
}

func (m *memoryStore) RecordAttempt(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byID[rec.ID]; dup {
		return errDuplicate(rec.ID)
	}
	m.byID[rec.ID] = len(m.attempts)
	m.attempts = append(m.attempts, copyRecord(rec))

	k := activityKey{rec.UserID, rec.QuizID}
	act, ok := m.activities[k]
	if !ok {
		act = Activity{UserID: rec.UserID, QuizID: rec.QuizID, StartedAt: rec.AttemptedAt, LastStartedAt: rec.AttemptedAt}
	}
	at := rec.AttemptedAt
	act.Completed = true
	act.CompletedAt = &at
	m.activities[k] = act
	return nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return Record{}, errs.NotFound("attempt", id)
	}
	return copyRecord(m.attempts[i]), nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts ListOpts) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for i := len(m.attempts) - 1; i >= 0; i-- {
		r := m.attempts[i]
		if opts.QuizID != 0 && r.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		out = append(out, copyRecord(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptedAt.After(out[j].AttemptedAt) })
	if opts.Offset >= len(out) {
		return []Record{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) StartActivity(_ context.Context, userID string, quizID int64, at time.Time) (Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := activityKey{userID, quizID}
	if act, ok := m.activities[k]; ok {
		act.LastStartedAt = at
		m.activities[k] = act
		return act, nil
	}
	act := Activity{UserID: userID, QuizID: quizID, StartedAt: at, LastStartedAt: at}
	m.activities[k] = act
	return act, nil
}

func (m *memoryStore) GetActivity(_ context.Context, userID string, quizID int64) (Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	act, ok := m.activities[activityKey{userID, quizID}]
	if !ok {
		return Activity{}, errs.NotFound("activity", quizID)
	}
	return act, nil
}

func (m *memoryStore) ListActivities(_ context.Context, userID string) ([]Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Activity{}
	for k, act := range m.activities {
		if k.user == userID {
			out = append(out, act)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].QuizID < out[j].QuizID
	})
	return out, nil
}

func copyRecord(r Record) Record {
	out := r
	out.Answers = make([]AnswerSnapshot, len(r.Answers))
	for i, a := range r.Answers {
		a.UserAnswer = append([]int64{}, a.UserAnswer...)
		a.CorrectAnswers = append([]int64{}, a.CorrectAnswers...)
		out.Answers[i] = a
	}
	return out
}
