package economy

import (
	"encoding/json"
	"testing"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemQuestion(id string, currency content.CurrencyType, marks ...float64) content.Question {
	subs := make([]content.SubQuestion, len(marks))
	for i, m := range marks {
		subs[i] = content.SubQuestion{ID: id + "-" + string(rune('a'+i)), Marks: m, AnswerType: content.AnswerText}
	}
	return content.Question{
		ID:            id,
		CurrencyType:  currency,
		GradingMode:   content.GradingSystem,
		SolutionSteps: []content.Step{{SubQuestions: subs}},
	}
}

func aiQuestion(id string, currency content.CurrencyType, rubric map[string]int, marks ...float64) content.Question {
	q := systemQuestion(id, currency, marks...)
	q.GradingMode = content.GradingAI
	q.AIRubric = rubric
	return q
}

func TestCalculateWorksheetCost(t *testing.T) {
	tests := []struct {
		name      string
		questions []content.Question
		settings  *Settings
		want      WalletTransaction
	}{
		{
			name: "empty",
			want: WalletTransaction{},
		},
		{
			name:      "rounds up per question",
			questions: []content.Question{systemQuestion("q", content.CurrencyCoin, 3)},
			want:      WalletTransaction{Coins: 2},
		},
		{
			name: "ceil per question not per worksheet",
			questions: []content.Question{
				systemQuestion("q1", content.CurrencyCoin, 1),
				systemQuestion("q2", content.CurrencyCoin, 1),
			},
			want: WalletTransaction{Coins: 2},
		},
		{
			name: "buckets by currency",
			questions: []content.Question{
				systemQuestion("q1", content.CurrencyCoin, 2, 2),
				systemQuestion("q2", content.CurrencyGold, 5),
				systemQuestion("q3", content.CurrencyDiamond, 10),
			},
			want: WalletTransaction{Coins: 2, Gold: 3, Diamonds: 5},
		},
		{
			name: "spark is free",
			questions: []content.Question{
				systemQuestion("q1", content.CurrencySpark, 100, 50),
				aiQuestion("q2", content.CurrencySpark, map[string]int{"a": 100}, 7),
			},
			want: WalletTransaction{},
		},
		{
			name: "marks across steps",
			questions: []content.Question{{
				ID: "q", CurrencyType: content.CurrencyGold, GradingMode: content.GradingSystem,
				SolutionSteps: []content.Step{
					{SubQuestions: []content.SubQuestion{{ID: "a", Marks: 1.5}}},
					{SubQuestions: []content.SubQuestion{{ID: "b", Marks: 2.5}, {ID: "c", Marks: 1}}},
				},
			}},
			want: WalletTransaction{Gold: 3},
		},
		{
			name:      "custom rate",
			questions: []content.Question{systemQuestion("q", content.CurrencyCoin, 3)},
			settings:  &Settings{CostPerMark: 2},
			want:      WalletTransaction{Coins: 6},
		},
		{
			name:      "unknown currency contributes nothing",
			questions: []content.Question{systemQuestion("q", "ruby", 3)},
			want:      WalletTransaction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateWorksheetCost(tt.questions, tt.settings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateAttemptRewards_SystemGraded(t *testing.T) {
	ws := content.Worksheet{ID: "w", Title: "Kinematics", WorksheetType: content.WorksheetPractice}
	q := systemQuestion("q", content.CurrencyCoin, 5, 5)
	results := content.ResultState{
		"q-a": {IsCorrect: true},
		"q-b": {IsCorrect: false},
	}

	got := CalculateAttemptRewards(ws, []content.Question{q}, results, "student", nil)
	assert.Equal(t, Rewards{Coin: 5}, got)
}

func TestCalculateAttemptRewards_AIGradedSpark(t *testing.T) {
	ws := content.Worksheet{ID: "w", Title: "Forces", WorksheetType: content.WorksheetClassroom}
	q := aiQuestion("q", content.CurrencySpark, map[string]int{"a": 50, "b": 50}, 4, 6)
	results := content.ResultState{
		"q-a": {AIBreakdown: map[string]float64{"a": 80, "b": 60}},
	}

	report := ExplainAttemptRewards(ws, []content.Question{q}, results, "student", nil)
	require.Len(t, report.Questions, 1)
	assert.Equal(t, 7.0, report.Questions[0].Obtained)
	assert.Equal(t, 0.5, report.Multiplier)
	assert.Equal(t, Rewards{Coin: 1}, report.Rewards)
}

func TestCalculateAttemptRewards_SampleOverride(t *testing.T) {
	q := systemQuestion("q", content.CurrencyGold, 10)
	results := content.ResultState{"q-a": {IsCorrect: true}}

	worksheets := []content.Worksheet{
		{ID: "1", Title: "Sample Algebra Set", WorksheetType: content.WorksheetPractice},
		{ID: "2", Title: "SAMPLE algebra set", WorksheetType: content.WorksheetClassroom},
		{ID: "3", Title: "my sampler", AuthorID: "student"},
		{ID: "4", Title: "Algebra", WorksheetType: content.WorksheetSample},
	}
	for _, ws := range worksheets {
		got := CalculateAttemptRewards(ws, []content.Question{q}, results, "student", nil)
		assert.Empty(t, got, ws.Title)
		assert.Equal(t, 0.0, Multiplier(ws, "student", nil), ws.Title)
	}
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name string
		ws   content.Worksheet
		user string
		want float64
	}{
		{"practice", content.Worksheet{WorksheetType: content.WorksheetPractice, AuthorID: "other"}, "me", 1.0},
		{"classroom", content.Worksheet{WorksheetType: content.WorksheetClassroom, AuthorID: "me"}, "me", 0.5},
		{"untyped own", content.Worksheet{AuthorID: "me"}, "me", 1.0},
		{"untyped assigned", content.Worksheet{AuthorID: "teacher"}, "me", 0.5},
		{"sample", content.Worksheet{WorksheetType: content.WorksheetSample, AuthorID: "me"}, "me", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Multiplier(tt.ws, tt.user, nil))
		})
	}

	custom := &Settings{RewardPractice: 2, RewardClassroom: 0.25}
	assert.Equal(t, 2.0, Multiplier(content.Worksheet{AuthorID: "me"}, "me", custom))
	assert.Equal(t, 0.25, Multiplier(content.Worksheet{AuthorID: "t"}, "me", custom))
}

func TestObtainedMarks(t *testing.T) {
	rubric := map[string]int{"method": 70, "answer": 30}

	tests := []struct {
		name    string
		q       content.Question
		results content.ResultState
		want    float64
	}{
		{
			name:    "system no partial credit",
			q:       systemQuestion("q", content.CurrencyCoin, 2, 3, 4),
			results: content.ResultState{"q-a": {IsCorrect: true, Score: 99}, "q-c": {IsCorrect: true}},
			want:    6,
		},
		{
			name:    "system missing results",
			q:       systemQuestion("q", content.CurrencyCoin, 2, 3),
			results: nil,
			want:    0,
		},
		{
			name:    "ai breakdown",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 10),
			results: content.ResultState{"q-a": {AIBreakdown: map[string]float64{"method": 50, "answer": 100}}},
			want:    6.5,
		},
		{
			name:    "ai breakdown missing criterion",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 10),
			results: content.ResultState{"q-a": {AIBreakdown: map[string]float64{"method": 100}}},
			want:    7,
		},
		{
			name:    "ai reads only the anchor",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 5, 5),
			results: content.ResultState{"q-b": {AIBreakdown: map[string]float64{"method": 100, "answer": 100}}},
			want:    0,
		},
		{
			name:    "ai raw score",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 5, 5),
			results: content.ResultState{"q-a": {Score: 8}},
			want:    8,
		},
		{
			name:    "ai score equal to total is marks",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 10),
			results: content.ResultState{"q-a": {Score: 10}},
			want:    10,
		},
		{
			name:    "ai score above total is a percentage",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 10),
			results: content.ResultState{"q-a": {Score: 80}},
			want:    8,
		},
		{
			name:    "ai empty breakdown does not fall back to score",
			q:       aiQuestion("q", content.CurrencyCoin, rubric, 10),
			results: content.ResultState{"q-a": {Score: 9, AIBreakdown: map[string]float64{}}},
			want:    0,
		},
		{
			name:    "ai without rubric falls back to score",
			q:       aiQuestion("q", content.CurrencyCoin, nil, 10),
			results: content.ResultState{"q-a": {Score: 4, AIBreakdown: map[string]float64{"method": 100}}},
			want:    4,
		},
		{
			name:    "ai with no subquestions",
			q:       content.Question{ID: "q", GradingMode: content.GradingAI, AIRubric: rubric},
			results: content.ResultState{"": {Score: 50}},
			want:    50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ObtainedMarks(tt.q, tt.results), 1e-12)
		})
	}
}

func TestCalculateAttemptRewards_Mixed(t *testing.T) {
	ws := content.Worksheet{ID: "w", Title: "Mixed", AuthorID: "teacher"}
	questions := []content.Question{
		systemQuestion("coin", content.CurrencyCoin, 3, 3),
		systemQuestion("gold", content.CurrencyGold, 5),
		systemQuestion("diamond", content.CurrencyDiamond, 1),
		systemQuestion("spark", content.CurrencySpark, 4),
		systemQuestion("missed", content.CurrencyGold, 100),
	}
	results := content.ResultState{
		"coin-a":    {IsCorrect: true},
		"coin-b":    {IsCorrect: true},
		"gold-a":    {IsCorrect: true},
		"diamond-a": {IsCorrect: true},
		"spark-a":   {IsCorrect: true},
	}

	// classroom multiplier 0.5: coin floor(6*0.5)=3, gold floor(2.5)=2,
	// diamond floor(0.5)=0, spark floor(4*0.5*0.5)=1 into coin.
	got := CalculateAttemptRewards(ws, questions, results, "student", nil)
	assert.Equal(t, Rewards{Coin: 4, Gold: 2}, got)

	_, hasDiamond := got[Diamond]
	assert.False(t, hasDiamond, "zero amounts must be omitted")
}

func TestCalculateAttemptRewards_FloorsPerQuestion(t *testing.T) {
	ws := content.Worksheet{ID: "w", WorksheetType: content.WorksheetClassroom}
	questions := []content.Question{
		systemQuestion("q1", content.CurrencyCoin, 1),
		systemQuestion("q2", content.CurrencyCoin, 1),
	}
	results := content.ResultState{"q1-a": {IsCorrect: true}, "q2-a": {IsCorrect: true}}

	got := CalculateAttemptRewards(ws, questions, results, "u", nil)
	assert.Empty(t, got)
}

func TestCalculateAttemptRewards_Idempotent(t *testing.T) {
	ws := content.Worksheet{ID: "w", WorksheetType: content.WorksheetPractice}
	questions := []content.Question{aiQuestion("q", content.CurrencyGold, map[string]int{"a": 100}, 10)}
	results := content.ResultState{"q-a": {AIBreakdown: map[string]float64{"a": 55}}}
	settings := DefaultSettings()

	first := CalculateAttemptRewards(ws, questions, results, "u", &settings)
	second := CalculateAttemptRewards(ws, questions, results, "u", &settings)
	assert.Equal(t, first, second)
	assert.Equal(t, Rewards{Gold: 5}, first)
	assert.Equal(t, DefaultSettings(), settings)
	assert.Equal(t, 55.0, results["q-a"].AIBreakdown["a"])
}

func TestRewards_JSON(t *testing.T) {
	raw, err := json.Marshal(Rewards{Coin: 3, Diamond: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"coin": 3, "diamond": 1}`, string(raw))

	var back Rewards
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, Rewards{Coin: 3, Diamond: 1}, back)
	assert.Equal(t, WalletTransaction{Coins: 3, Diamonds: 1}, back.Transaction())
}
