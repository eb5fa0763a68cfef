// Package quizgen turns the structured text returned by a quiz-generating
// content provider into a quiz definition. It makes no network calls.
package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

var ErrNoQuiz = errors.New("generated content has no usable quiz")

type generated struct {
	Title     string              `json:"title"`
	Questions []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_option_index"`
}

// Parse reads provider output such as
//
//	```json
//	{"title": "...", "questions": [{"text": "...", "options": ["a","b"], "correct_option_index": 1}]}
//	```
//
// Questions with no text, fewer than two options or an out-of-range index are
// skipped. Every kept question is single choice, positioned 1..n.
func Parse(text string, passingScore int) (quiz.Quiz, error) {
	var g generated
	if err := json.Unmarshal([]byte(stripFence(text)), &g); err != nil {
		return quiz.Quiz{}, fmt.Errorf("parse generated quiz: %w", err)
	}
	if strings.TrimSpace(g.Title) == "" {
		return quiz.Quiz{}, fmt.Errorf("%w: missing title", ErrNoQuiz)
	}

	z := quiz.Quiz{Title: strings.TrimSpace(g.Title), PassingScore: passingScore}
	for i, gq := range g.Questions {
		if reason := skipReason(gq); reason != "" {
			glog.Warningf("generated quiz %q: skipping question %d: %s", z.Title, i, reason)
			continue
		}
		q := quiz.Question{
			Text:     strings.TrimSpace(gq.Text),
			Type:     quiz.SingleChoice,
			Position: len(z.Questions) + 1,
		}
		for j, opt := range gq.Options {
			q.Answers = append(q.Answers, quiz.Answer{Text: strings.TrimSpace(opt), IsCorrect: j == *gq.CorrectIndex})
		}
		z.Questions = append(z.Questions, q)
	}
	if len(z.Questions) == 0 {
		return quiz.Quiz{}, fmt.Errorf("%w: no valid questions", ErrNoQuiz)
	}
	glog.V(4).Infof("parsed generated quiz %q with %d questions", z.Title, len(z.Questions))
	return z, nil
}

func skipReason(gq generatedQuestion) string {
	switch {
	case strings.TrimSpace(gq.Text) == "":
		return "no text"
	case len(gq.Options) < 2:
		return "fewer than two options"
	case gq.CorrectIndex == nil:
		return "no correct_option_index"
	case *gq.CorrectIndex < 0 || *gq.CorrectIndex >= len(gq.Options):
		return fmt.Sprintf("correct_option_index %d out of range", *gq.CorrectIndex)
	}
	for _, o := range gq.Options {
		if strings.TrimSpace(o) == "" {
			return "blank option"
		}
	}
	return ""
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
