package grader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/units"
)

const (
	FeedbackCorrect     = "Correct!"
	FeedbackInvalidUnit = "Invalid unit format. Please check your units."
	FeedbackEmpty       = "No answer given."
	FeedbackIncorrect   = "Incorrect."
)

// Verdict is the outcome of checking one answer.
type Verdict struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// CheckNumericalAnswer parses the learner's input as a quantity, converts it
// to correctUnit and accepts it when it lies within tolerance (inclusive)
// of correctValue. Unparseable input and dimension mismatches both produce
// the invalid-unit verdict; nothing is returned as an error.
func CheckNumericalAnswer(studentInput string, correctValue float64, correctUnit string, tolerance float64) Verdict {
	q, err := units.Parse(strings.TrimSpace(studentInput))
	if err != nil {
		return Verdict{Feedback: FeedbackInvalidUnit}
	}
	converted, err := q.In(correctUnit)
	if err != nil {
		return Verdict{Feedback: FeedbackInvalidUnit}
	}

	if math.Abs(converted-correctValue) <= tolerance {
		return Verdict{IsCorrect: true, Feedback: FeedbackCorrect}
	}
	return Verdict{
		Feedback: fmt.Sprintf("Incorrect. Expected %s, your answer is equivalent to %s.",
			withUnit(strconv.FormatFloat(correctValue, 'f', -1, 64), correctUnit),
			withUnit(strconv.FormatFloat(converted, 'f', 3, 64), correctUnit)),
	}
}

func withUnit(value, unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return value
	}
	return value + " " + unit
}

// CheckAnswer checks the learner's input against a subquestion.
//
// Normalization rules:
// - Whitespace is trimmed; empty input is never correct
// - Numerical answers go through CheckNumericalAnswer with the reference
// - Multiple choice matches the option text (case-insensitive) or its
//   1-based index
// - Text answers compare case-insensitively with runs of whitespace folded
func CheckAnswer(learnerAnswer string, sub content.SubQuestion) Verdict {
	learnerAnswer = strings.TrimSpace(learnerAnswer)
	if learnerAnswer == "" {
		return Verdict{Feedback: FeedbackEmpty}
	}

	switch sub.AnswerType {
	case content.AnswerNumerical:
		if sub.Reference == nil {
			return Verdict{Feedback: FeedbackInvalidUnit}
		}
		ref := sub.Reference
		return CheckNumericalAnswer(learnerAnswer, ref.CorrectValue, ref.BaseUnit, ref.Tolerance)
	case content.AnswerMCQ:
		return verdict(checkMultipleChoice(learnerAnswer, sub))
	default:
		return verdict(foldText(learnerAnswer) == foldText(sub.Answer))
	}
}

func verdict(ok bool) Verdict {
	if ok {
		return Verdict{IsCorrect: true, Feedback: FeedbackCorrect}
	}
	return Verdict{Feedback: FeedbackIncorrect}
}

// checkMultipleChoice checks the learner's answer against the options.
func checkMultipleChoice(learnerAnswer string, sub content.SubQuestion) bool {
	// Try matching by index (1..len(options)).
	if idx, err := strconv.Atoi(learnerAnswer); err == nil && idx >= 1 && idx <= len(sub.Options) {
		return strings.EqualFold(strings.TrimSpace(sub.Options[idx-1]), strings.TrimSpace(sub.Answer))
	}
	return strings.EqualFold(learnerAnswer, strings.TrimSpace(sub.Answer))
}

func foldText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// GradeQuestion checks every answered subquestion of a system-graded
// question and returns its results. Subquestions without an answer are left
// out, which the reward engine reads as "not attempted".
func GradeQuestion(q content.Question, answers map[string]string) (content.ResultState, map[string]Verdict) {
	results := make(content.ResultState)
	verdicts := make(map[string]Verdict)
	for _, sub := range q.SubQuestions() {
		answer, ok := answers[sub.ID]
		if !ok {
			continue
		}
		v := CheckAnswer(answer, sub)
		verdicts[sub.ID] = v
		out := content.Outcome{IsCorrect: v.IsCorrect}
		if v.IsCorrect {
			out.Score = sub.Marks
		}
		results[sub.ID] = out
	}
	return results, verdicts
}
