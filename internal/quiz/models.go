package quiz

import (
	"sort"
	"time"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// DefaultPassingScore applies when a quiz is authored without a threshold.
const DefaultPassingScore = 50

type Answer struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id,omitempty"`
	Text       string `json:"text" validate:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

type Question struct {
	ID       int64        `json:"id"`
	QuizID   int64        `json:"quiz_id,omitempty"`
	Text     string       `json:"text" validate:"required"`
	Type     QuestionType `json:"type" validate:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE"`
	Position int          `json:"position" validate:"gte=0"`
	Answers  []Answer     `json:"answers" validate:"dive"`
}

type Quiz struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title" validate:"required"`
	PassingScore int        `json:"passing_score" validate:"gte=0,lte=100"`
	Questions    []Question `json:"questions" validate:"dive"`
	// Reference is study material shown to a learner after a failed attempt.
	Reference string `json:"reference,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Summary is the listing view of a quiz.
type Summary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	PassingScore  int    `json:"passing_score"`
	QuestionCount int    `json:"question_count"`
	CreatedAt     int64  `json:"created_at"`
}

// CorrectIDs returns the ids of the answers flagged correct, in key order.
func (q Question) CorrectIDs() []int64 {
	out := make([]int64, 0, 1)
	for _, a := range q.Answers {
		if a.IsCorrect {
			out = append(out, a.ID)
		}
	}
	return out
}

// Lookup finds an answer of this question by id.
func (q Question) Lookup(answerID int64) (Answer, bool) {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return a, true
		}
	}
	return Answer{}, false
}

// Question finds a question of this quiz by id.
func (z Quiz) Question(id int64) (Question, bool) {
	for _, q := range z.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Public strips the correct flags and the reference so the quiz can be
// served to learners before they attempt it.
func (z Quiz) Public() Quiz {
	out := z
	out.Reference = ""
	out.Questions = make([]Question, len(z.Questions))
	for i, q := range z.Questions {
		q.Answers = append([]Answer(nil), q.Answers...)
		for j := range q.Answers {
			q.Answers[j].IsCorrect = false
		}
		out.Questions[i] = q
	}
	return out
}

func (z Quiz) Summary() Summary {
	return Summary{
		ID:            z.ID,
		Title:         z.Title,
		PassingScore:  z.PassingScore,
		QuestionCount: len(z.Questions),
		CreatedAt:     z.CreatedAt,
	}
}

// sortQuestions orders questions by position, then id, so every store iterates
// the key identically.
func sortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].Position != qs[j].Position {
			return qs[i].Position < qs[j].Position
		}
		return qs[i].ID < qs[j].ID
	})
}

func now() int64 { return time.Now().Unix() }
