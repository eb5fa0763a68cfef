package grading

import (
	"github.com/golang/glog"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// DiagnosticKind names a non-fatal problem found in an answer key.
type DiagnosticKind string

const (
	// InconsistentKey: a single-choice question without exactly one correct answer.
	InconsistentKey DiagnosticKind = "inconsistent_key"
	// UnsupportedType: no strategy is registered for the question type.
	UnsupportedType DiagnosticKind = "unsupported_type"
)

// Diagnostic is reported to content authors, never to the learner as an error.
type Diagnostic struct {
	QuestionID   int64          `json:"question_id"`
	Kind         DiagnosticKind `json:"kind"`
	CorrectCount int            `json:"correct_count"`
}

// QuestionResult is the outcome of grading a single question.
type QuestionResult struct {
	QuestionID int64             `json:"question_id"`
	Type       quiz.QuestionType `json:"type"`
	Selected   []int64           `json:"selected"`
	Correct    []int64           `json:"correct"`
	IsCorrect  bool              `json:"is_correct"`
}

// Result is the outcome of grading a whole submission.
type Result struct {
	Score        int              `json:"score"`
	Total        int              `json:"total"`
	Percentage   float64          `json:"percentage"`
	PassingScore int              `json:"passing_score"`
	Passed       bool             `json:"passed"`
	Questions    []QuestionResult `json:"questions"`
	Diagnostics  []Diagnostic     `json:"diagnostics,omitempty"`
}

// Strategy decides whether one question was answered correctly.
type Strategy interface {
	Grade(q quiz.Question, selected []int64) (bool, *Diagnostic)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(key quiz.Quiz, sub Normalized) (Result, error)
}

type defaultGrader struct {
	strategies map[quiz.QuestionType]Strategy
}

type Option func(*config)

type config struct {
	strategies map[quiz.QuestionType]Strategy
}

// WithStrategy installs or replaces the strategy for a question type.
func WithStrategy(t quiz.QuestionType, s Strategy) Option {
	return func(c *config) { c.strategies[t] = s }
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{
		strategies: map[quiz.QuestionType]Strategy{
			quiz.SingleChoice:   singleChoiceStrategy{},
			quiz.MultipleChoice: multipleChoiceStrategy{},
		},
	}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultGrader{strategies: cfg.strategies}
}

// Grade is pure: the same key and submission always give the same result.
func (g *defaultGrader) Grade(key quiz.Quiz, sub Normalized) (Result, error) {
	byQuestion := make(map[int64]Selection, len(sub))
	for _, s := range sub {
		byQuestion[s.QuestionID] = s
	}

	res := Result{
		Total:        len(key.Questions),
		PassingScore: key.PassingScore,
		Questions:    make([]QuestionResult, 0, len(key.Questions)),
	}
	for _, q := range key.Questions {
		sel, ok := byQuestion[q.ID]
		if !ok {
			return Result{}, errs.MissingAnswerError{QuestionID: q.ID}
		}
		qr := QuestionResult{
			QuestionID: q.ID,
			Type:       q.Type,
			Selected:   append([]int64(nil), sel.AnswerIDs...),
			Correct:    q.CorrectIDs(),
		}

		s, ok := g.strategies[q.Type]
		if !ok {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{QuestionID: q.ID, Kind: UnsupportedType})
			glog.Warningf("quiz %d question %d: no grading strategy for type %q", key.ID, q.ID, q.Type)
		} else {
			correct, diag := s.Grade(q, sel.AnswerIDs)
			qr.IsCorrect = correct
			if diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
				glog.Warningf("quiz %d question %d: %s (%d correct answers)", key.ID, q.ID, diag.Kind, diag.CorrectCount)
			}
		}
		if qr.IsCorrect {
			res.Score++
		}
		res.Questions = append(res.Questions, qr)
	}

	res.Percentage, res.Passed = verdict(res.Score, res.Total, key.PassingScore)
	return res, nil
}

// verdict returns the percentage and the inclusive pass decision. An empty quiz
// scores 0 percent.
func verdict(score, total, passingScore int) (float64, bool) {
	if total == 0 {
		return 0, passingScore <= 0
	}
	pct := 100 * float64(score) / float64(total)
	// compare in integers so 1/2 against 50 is never lost to rounding
	return pct, score*100 >= passingScore*total
}

// --- Strategies ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Grade(q quiz.Question, selected []int64) (bool, *Diagnostic) {
	correct := q.CorrectIDs()
	if len(correct) != 1 {
		return false, &Diagnostic{QuestionID: q.ID, Kind: InconsistentKey, CorrectCount: len(correct)}
	}
	return len(selected) == 1 && selected[0] == correct[0], nil
}

type multipleChoiceStrategy struct{}

func (multipleChoiceStrategy) Grade(q quiz.Question, selected []int64) (bool, *Diagnostic) {
	return setEqual(toSet(q.CorrectIDs()), toSet(selected)), nil
}

// helpers

func toSet(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
