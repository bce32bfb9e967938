package validator

import (
	"fmt"

	"github.com/quizhub/quiz-service/internal/models"
)

// ValidateQuiz runs struct validation followed by the question variant rules
func (v *Validator) ValidateQuiz(req *QuizRequest) error {
	var errs ValidationErrors

	if err := v.Validate(req); err != nil {
		errs = append(errs, err.(ValidationErrors)...)
	}
	errs = append(errs, validateQuestionVariants(req.Questions)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCompletion checks the completion payload, including score <= total_questions
func (v *Validator) ValidateCompletion(req *CompleteAttemptRequest) error {
	if err := v.Validate(req); err != nil {
		return err
	}

	if *req.Score > *req.TotalQuestions {
		return ValidationErrors{{
			Field:   "score",
			Message: fmt.Sprintf("cannot exceed total_questions (%d)", *req.TotalQuestions),
			Value:   *req.Score,
			Rule:    "lte_total_questions",
		}}
	}

	return nil
}

// validateQuestionVariants enforces that each question only carries the
// children its type uses, and that choice questions mark correct options sensibly.
func validateQuestionVariants(questions []QuestionRequest) ValidationErrors {
	var errors ValidationErrors

	for i, q := range questions {
		prefix := fmt.Sprintf("questions[%d]", i)

		if !q.Type.UsesPairs() && len(q.Pairs) > 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".pairs",
				Message: fmt.Sprintf("not allowed for %s questions", q.Type),
				Value:   len(q.Pairs),
				Rule:    "question_variant",
			})
		}
		if !q.Type.UsesOptions() && len(q.Options) > 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".options",
				Message: fmt.Sprintf("not allowed for %s questions", q.Type),
				Value:   len(q.Options),
				Rule:    "question_variant",
			})
		}

		if len(q.Options) == 0 {
			continue
		}

		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}

		switch q.Type {
		case models.QuestionSingle:
			if correct != 1 {
				errors = append(errors, ValidationError{
					Field:   prefix + ".options",
					Message: "must have exactly one correct option",
					Value:   correct,
					Rule:    "single_correct",
				})
			}
		case models.QuestionMultiple:
			if correct < 1 {
				errors = append(errors, ValidationError{
					Field:   prefix + ".options",
					Message: "must have at least one correct option",
					Value:   correct,
					Rule:    "multiple_correct",
				})
			}
		}
	}

	return errors
}
