package content

// CurrencyType names the wallet balance a question funds or costs.
type CurrencyType string

const (
	CurrencySpark   CurrencyType = "spark"
	CurrencyCoin    CurrencyType = "coin"
	CurrencyGold    CurrencyType = "gold"
	CurrencyDiamond CurrencyType = "diamond"
)

// GradingMode says who grades a question.
type GradingMode string

const (
	GradingSystem GradingMode = "system"
	GradingAI     GradingMode = "ai"
)

// AnswerType is the input format of a subquestion.
type AnswerType string

const (
	AnswerNumerical AnswerType = "numerical"
	AnswerMCQ       AnswerType = "mcq"
	AnswerText      AnswerType = "text"
)

// WorksheetType selects the reward multiplier. Empty means "decide from the
// author".
type WorksheetType string

const (
	WorksheetPractice  WorksheetType = "practice"
	WorksheetClassroom WorksheetType = "classroom"
	WorksheetSample    WorksheetType = "sample"
)

// NumericalReference is the reference quantity of a numerical subquestion.
type NumericalReference struct {
	CorrectValue float64 `json:"correctValue"`
	BaseUnit     string  `json:"baseUnit"`
	Tolerance    float64 `json:"tolerance" validate:"gte=0"`
}

// SubQuestion is the unit of marking.
type SubQuestion struct {
	ID         string              `json:"id" validate:"required"`
	Marks      float64             `json:"marks" validate:"gt=0"`
	AnswerType AnswerType          `json:"answerType" validate:"oneof=numerical mcq text"`
	Reference  *NumericalReference `json:"reference,omitempty" validate:"required_if=AnswerType numerical"`
	Options    []string            `json:"options,omitempty" validate:"required_if=AnswerType mcq"`
	Answer     string              `json:"answer,omitempty"`
}

// Step groups subquestions of a worked solution.
type Step struct {
	SubQuestions []SubQuestion `json:"subQuestions" validate:"min=1,dive"`
}

// Question is an authored question with its marking scheme.
type Question struct {
	ID            string         `json:"id" validate:"required"`
	CurrencyType  CurrencyType   `json:"currencyType" validate:"oneof=spark coin gold diamond"`
	GradingMode   GradingMode    `json:"gradingMode" validate:"oneof=system ai"`
	AIRubric      map[string]int `json:"aiRubric,omitempty"`
	SolutionSteps []Step         `json:"solutionSteps" validate:"min=1,dive"`
}

// TotalMarks sums the marks of every subquestion of every step.
func (q Question) TotalMarks() float64 {
	var total float64
	for _, step := range q.SolutionSteps {
		for _, sub := range step.SubQuestions {
			total += sub.Marks
		}
	}
	return total
}

// AnchorSubQuestionID returns the id an AI grade for the whole question is
// stored under: the first subquestion of the first step. Empty when the
// question has no subquestions.
func (q Question) AnchorSubQuestionID() string {
	if len(q.SolutionSteps) == 0 || len(q.SolutionSteps[0].SubQuestions) == 0 {
		return ""
	}
	return q.SolutionSteps[0].SubQuestions[0].ID
}

// SubQuestions returns every subquestion in display order.
func (q Question) SubQuestions() []SubQuestion {
	var out []SubQuestion
	for _, step := range q.SolutionSteps {
		out = append(out, step.SubQuestions...)
	}
	return out
}

// Worksheet is an ordered selection of questions.
type Worksheet struct {
	ID            string        `json:"id" validate:"required"`
	Title         string        `json:"title"`
	Questions     []string      `json:"questions"`
	WorksheetType WorksheetType `json:"worksheetType,omitempty" validate:"omitempty,oneof=practice classroom sample"`
	AuthorID      string        `json:"authorId,omitempty"`
}

// Outcome is the graded result of one subquestion. AI-graded questions carry
// the rubric breakdown (criterion -> percent) on their anchor subquestion.
type Outcome struct {
	IsCorrect   bool               `json:"isCorrect,omitempty"`
	Score       float64            `json:"score,omitempty"`
	AIBreakdown map[string]float64 `json:"aiBreakdown,omitempty"`
}

// ResultState maps subquestion id to its outcome. A missing entry means the
// subquestion was not attempted.
type ResultState map[string]Outcome
