package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericalQuestion(id string) Question {
	return Question{
		ID:           id,
		CurrencyType: CurrencyCoin,
		GradingMode:  GradingSystem,
		SolutionSteps: []Step{
			{SubQuestions: []SubQuestion{
				{ID: id + "-a", Marks: 2, AnswerType: AnswerNumerical, Reference: &NumericalReference{CorrectValue: 1, BaseUnit: "kN", Tolerance: 0.01}},
				{ID: id + "-b", Marks: 3, AnswerType: AnswerText, Answer: "newton"},
			}},
			{SubQuestions: []SubQuestion{
				{ID: id + "-c", Marks: 5, AnswerType: AnswerMCQ, Options: []string{"up", "down"}, Answer: "down"},
			}},
		},
	}
}

func TestQuestion_TotalMarksAndAnchor(t *testing.T) {
	q := numericalQuestion("q1")
	assert.Equal(t, 10.0, q.TotalMarks())
	assert.Equal(t, "q1-a", q.AnchorSubQuestionID())
	assert.Len(t, q.SubQuestions(), 3)

	assert.Equal(t, "", Question{ID: "empty"}.AnchorSubQuestionID())
	assert.Equal(t, 0.0, Question{ID: "empty"}.TotalMarks())
}

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Question)
		wantErr error
		wantMsg string
	}{
		{name: "valid", mutate: func(q *Question) {}},
		{name: "unknown currency", mutate: func(q *Question) { q.CurrencyType = "ruby" }, wantMsg: "CurrencyType"},
		{name: "unknown grading", mutate: func(q *Question) { q.GradingMode = "peer" }, wantMsg: "GradingMode"},
		{name: "no steps", mutate: func(q *Question) { q.SolutionSteps = nil }, wantMsg: "SolutionSteps"},
		{name: "zero marks", mutate: func(q *Question) { q.SolutionSteps[0].SubQuestions[0].Marks = 0 }, wantMsg: "Marks"},
		{name: "missing reference", mutate: func(q *Question) { q.SolutionSteps[0].SubQuestions[0].Reference = nil }, wantMsg: "Reference"},
		{name: "negative tolerance", mutate: func(q *Question) { q.SolutionSteps[0].SubQuestions[0].Reference.Tolerance = -1 }, wantMsg: "Tolerance"},
		{name: "mcq without options", mutate: func(q *Question) { q.SolutionSteps[1].SubQuestions[0].Options = nil }, wantMsg: "Options"},
		{name: "duplicate ids", mutate: func(q *Question) { q.SolutionSteps[1].SubQuestions[0].ID = "q1-a" }, wantErr: ErrDuplicateID},
		{
			name: "ai rubric sums to 100",
			mutate: func(q *Question) {
				q.GradingMode = GradingAI
				q.AIRubric = map[string]int{"method": 60, "accuracy": 40}
			},
		},
		{
			name: "ai rubric short",
			mutate: func(q *Question) {
				q.GradingMode = GradingAI
				q.AIRubric = map[string]int{"method": 60, "accuracy": 30}
			},
			wantErr: ErrRubricSum,
		},
		{
			name:    "ai without rubric",
			mutate:  func(q *Question) { q.GradingMode = GradingAI },
			wantErr: ErrRubricMissing,
		},
		{
			name: "negative weight",
			mutate: func(q *Question) {
				q.GradingMode = GradingAI
				q.AIRubric = map[string]int{"method": 110, "accuracy": -10}
			},
			wantMsg: "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := numericalQuestion("q1")
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr == nil && tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "question", ve.Kind)
			assert.Equal(t, "q1", ve.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestWorksheet_Validate(t *testing.T) {
	assert.NoError(t, Worksheet{ID: "w1"}.Validate())
	assert.NoError(t, Worksheet{ID: "w1", WorksheetType: WorksheetSample}.Validate())
	assert.Error(t, Worksheet{ID: "w1", WorksheetType: "homework"}.Validate())
	assert.Error(t, Worksheet{}.Validate())
}

const validBundle = `{
  "schemaVersion": "1.2.0",
  "worksheet": {"id": "w1", "title": "Forces", "questions": ["q2", "missing", "q1"], "worksheetType": "practice", "authorId": "t1"},
  "questions": [
    {"id": "q1", "currencyType": "coin", "gradingMode": "system",
     "solutionSteps": [{"subQuestions": [{"id": "s1", "marks": 5, "answerType": "numerical",
        "reference": {"correctValue": 1, "baseUnit": "kN", "tolerance": 0.01}}]}]},
    {"id": "q2", "currencyType": "spark", "gradingMode": "ai", "aiRubric": {"a": 50, "b": 50},
     "solutionSteps": [{"subQuestions": [{"id": "s2", "marks": 10, "answerType": "text"}]}]}
  ],
  "results": {"s1": {"isCorrect": true}, "s2": {"aiBreakdown": {"a": 80, "b": 60}}}
}`

func TestDecodeBundle(t *testing.T) {
	b, err := DecodeBundle(strings.NewReader(validBundle))
	require.NoError(t, err)

	require.NotNil(t, b.Worksheet)
	assert.Equal(t, WorksheetPractice, b.Worksheet.WorksheetType)
	require.Len(t, b.Questions, 2)
	assert.True(t, b.Results["s1"].IsCorrect)
	assert.Equal(t, 80.0, b.Results["s2"].AIBreakdown["a"])

	ordered := b.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "q2", ordered[0].ID)
	assert.Equal(t, "q1", ordered[1].ID)
}

func TestDecodeBundle_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{name: "not json", doc: `{`, wantMsg: "parse bundle"},
		{name: "missing version", doc: `{"questions": []}`, wantMsg: "bundle schema"},
		{name: "bad currency", doc: `{"schemaVersion": "1.0.0", "questions": [{"id": "q", "currencyType": "ruby", "gradingMode": "system", "solutionSteps": [{"subQuestions": [{"id": "s", "marks": 1, "answerType": "text"}]}]}]}`, wantMsg: "bundle schema"},
		{name: "zero marks", doc: `{"schemaVersion": "1.0.0", "questions": [{"id": "q", "currencyType": "coin", "gradingMode": "system", "solutionSteps": [{"subQuestions": [{"id": "s", "marks": 0, "answerType": "text"}]}]}]}`, wantMsg: "bundle schema"},
		{name: "future major", doc: `{"schemaVersion": "2.0.0", "questions": []}`, wantErr: ErrSchemaVersion},
		{name: "garbage version", doc: `{"schemaVersion": "latest", "questions": []}`, wantErr: ErrSchemaVersion},
		{name: "rubric sum", doc: `{"schemaVersion": "v1", "questions": [{"id": "q", "currencyType": "coin", "gradingMode": "ai", "aiRubric": {"a": 10}, "solutionSteps": [{"subQuestions": [{"id": "s", "marks": 1, "answerType": "text"}]}]}]}`, wantErr: ErrRubricSum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBundle(strings.NewReader(tt.doc))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestBundle_OrderedWithoutWorksheet(t *testing.T) {
	b := &Bundle{Questions: []Question{numericalQuestion("a"), numericalQuestion("b")}}
	got := b.Ordered()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}
