package quizgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

const fenced = "```json\n" + `{
  "title": "Go Quiz",
  "questions": [
    {"text": "Zero value of int?", "options": ["0", "nil", "1", "-1"], "correct_option_index": 0},
    {"text": "", "options": ["a", "b"], "correct_option_index": 0},
    {"text": "Bad index", "options": ["a", "b"], "correct_option_index": 5},
    {"text": "Keyword for goroutines?", "options": ["async", "go"], "correct_option_index": 1}
  ]
}` + "\n```"

func TestParse(t *testing.T) {
	z, err := Parse(fenced, 60)
	require.NoError(t, err)
	assert.Equal(t, "Go Quiz", z.Title)
	assert.Equal(t, 60, z.PassingScore)
	require.Len(t, z.Questions, 2)

	q := z.Questions[1]
	assert.Equal(t, "Keyword for goroutines?", q.Text)
	assert.Equal(t, quiz.SingleChoice, q.Type)
	assert.Equal(t, 2, q.Position)
	assert.False(t, q.Answers[0].IsCorrect)
	assert.True(t, q.Answers[1].IsCorrect)

	assert.NoError(t, quiz.Validate(z))
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("not json", 50)
	assert.Error(t, err)

	_, err = Parse(`{"title": "", "questions": []}`, 50)
	assert.True(t, errors.Is(err, ErrNoQuiz))

	_, err = Parse(`{"title": "Empty", "questions": [{"text": "q", "options": ["only"], "correct_option_index": 0}]}`, 50)
	assert.True(t, errors.Is(err, ErrNoQuiz))

	_, err = Parse(`{"title": "NoIndex", "questions": [{"text": "q", "options": ["a", "b"]}]}`, 50)
	assert.True(t, errors.Is(err, ErrNoQuiz))
}
