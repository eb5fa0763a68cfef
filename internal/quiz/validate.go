package quiz

import (
	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-quiz/internal/errs"
)

var validate = validator.New()

// Validate checks an authored quiz before it is stored. It does not enforce the
// single-correct-answer rule; grading reports that as a diagnostic instead.
func Validate(z Quiz) error {
	if err := validate.Struct(z); err != nil {
		return errs.Invalid("%v", err)
	}
	seen := make(map[int]struct{}, len(z.Questions))
	for i, q := range z.Questions {
		if _, dup := seen[q.Position]; dup {
			return errs.Invalid("question %d: duplicate position %d", i, q.Position)
		}
		seen[q.Position] = struct{}{}
		if len(q.Answers) == 0 {
			return errs.Invalid("question %d: no answers", i)
		}
	}
	return nil
}
