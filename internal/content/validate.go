package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrRubricSum     = errors.New("ai rubric weights must sum to 100")
	ErrRubricMissing = errors.New("ai-graded question needs a rubric")
	ErrDuplicateID   = errors.New("duplicate subquestion id")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports why a question or worksheet was rejected.
type ValidationError struct {
	Kind string // "question" or "worksheet"
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the question's shape and, for AI grading, that the rubric
// weights sum to exactly 100.
func (q Question) Validate() error {
	if err := validate.Struct(q); err != nil {
		return &ValidationError{Kind: "question", ID: q.ID, Err: describe(err)}
	}

	seen := make(map[string]bool)
	for _, sub := range q.SubQuestions() {
		if seen[sub.ID] {
			return &ValidationError{Kind: "question", ID: q.ID, Err: fmt.Errorf("%w: %q", ErrDuplicateID, sub.ID)}
		}
		seen[sub.ID] = true
	}

	if q.GradingMode != GradingAI {
		return nil
	}
	if len(q.AIRubric) == 0 {
		return &ValidationError{Kind: "question", ID: q.ID, Err: ErrRubricMissing}
	}
	sum := 0
	for key, w := range q.AIRubric {
		if w < 0 {
			return &ValidationError{Kind: "question", ID: q.ID, Err: fmt.Errorf("rubric weight %q is negative", key)}
		}
		sum += w
	}
	if sum != 100 {
		return &ValidationError{Kind: "question", ID: q.ID, Err: fmt.Errorf("%w (got %d)", ErrRubricSum, sum)}
	}
	return nil
}

// Validate checks the worksheet's id and type.
func (w Worksheet) Validate() error {
	if err := validate.Struct(w); err != nil {
		return &ValidationError{Kind: "worksheet", ID: w.ID, Err: describe(err)}
	}
	return nil
}

// describe flattens validator field errors into one readable error.
func describe(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fe.Namespace() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}
