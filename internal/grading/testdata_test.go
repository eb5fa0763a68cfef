package grading

import "github.com/mind-engage/mindengage-quiz/internal/quiz"

// twoQuestionQuiz: Q1 single choice {A1*, A2}, Q2 multiple choice {B1*, B2, B3*, B4}.
func twoQuestionQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID:           1,
		Title:        "scenario",
		PassingScore: 50,
		Questions: []quiz.Question{
			{
				ID: 10, Type: quiz.SingleChoice, Position: 1, Text: "Q1",
				Answers: []quiz.Answer{{ID: 101, Text: "A1", IsCorrect: true}, {ID: 102, Text: "A2"}},
			},
			{
				ID: 20, Type: quiz.MultipleChoice, Position: 2, Text: "Q2",
				Answers: []quiz.Answer{
					{ID: 201, Text: "B1", IsCorrect: true},
					{ID: 202, Text: "B2"},
					{ID: 203, Text: "B3", IsCorrect: true},
					{ID: 204, Text: "B4"},
				},
			},
		},
	}
}
