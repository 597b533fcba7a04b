package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
)

// registerBusinessRules registers custom rule validators.
func (v *Validator) registerBusinessRules() {
	// Exactly four answer options per question.
	_ = v.validate.RegisterValidation("option_count", func(fl validator.FieldLevel) bool {
		return fl.Field().Len() == models.OptionCount
	})

	// Correct-answer index must address one of the four option slots.
	_ = v.validate.RegisterValidation("correct_index", func(fl validator.FieldLevel) bool {
		idx := fl.Field().Int()
		return idx >= 0 && idx < models.OptionCount
	})
}

// ValidateQuizStatusTransition validates quiz lifecycle transitions.
// A quiz only moves forward: scheduled -> live -> completed.
func (v *Validator) ValidateQuizStatusTransition(current, next models.QuizStatus) ValidationErrors {
	allowed := map[models.QuizStatus][]models.QuizStatus{
		models.QuizScheduled: {models.QuizLive},
		models.QuizLive:      {models.QuizCompleted},
		models.QuizCompleted: {},
	}

	for _, s := range allowed[current] {
		if s == next {
			return nil
		}
	}

	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}
