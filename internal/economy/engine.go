package economy

import (
	"strings"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateWorksheetCost returns what unlocking the questions costs. Each
// non-spark question costs ceil(total marks * CostPerMark) in its own
// currency; spark questions are free.
func CalculateWorksheetCost(questions []content.Question, s *Settings) WalletTransaction {
	cfg := resolve(s)
	rate := decimal.NewFromFloat(cfg.CostPerMark)

	var tx WalletTransaction
	for _, q := range questions {
		if q.CurrencyType == content.CurrencySpark {
			continue
		}
		c, ok := currencyFor(q.CurrencyType)
		if !ok {
			continue
		}
		tx.Add(c, totalMarks(q).Mul(rate).Ceil().IntPart())
	}
	return tx
}

// QuestionReward explains how one question contributed to a reward.
type QuestionReward struct {
	QuestionID string   `json:"questionId"`
	Obtained   float64  `json:"obtained"`
	MaxMarks   float64  `json:"maxMarks"`
	Currency   Currency `json:"currency"`
	Amount     int64    `json:"amount"`
}

// RewardReport is the full result of a reward calculation.
type RewardReport struct {
	Multiplier float64          `json:"multiplier"`
	Questions  []QuestionReward `json:"questions"`
	Rewards    Rewards          `json:"rewards"`
}

// CalculateAttemptRewards returns the currency earned by userID's attempt
// at ws. Only strictly positive amounts are present.
func CalculateAttemptRewards(ws content.Worksheet, questions []content.Question, results content.ResultState, userID string, s *Settings) Rewards {
	return ExplainAttemptRewards(ws, questions, results, userID, s).Rewards
}

// ExplainAttemptRewards is CalculateAttemptRewards with the per-question
// breakdown kept.
func ExplainAttemptRewards(ws content.Worksheet, questions []content.Question, results content.ResultState, userID string, s *Settings) RewardReport {
	cfg := resolve(s)
	mult := multiplier(ws, userID, cfg)
	spark := decimal.NewFromFloat(cfg.RewardSpark)

	report := RewardReport{
		Multiplier: mult.InexactFloat64(),
		Rewards:    make(Rewards),
	}
	for _, q := range questions {
		obtained := obtainedMarks(q, results)
		if !obtained.IsPositive() {
			continue
		}
		c, ok := currencyFor(q.CurrencyType)
		if !ok {
			continue
		}

		earned := obtained.Mul(mult)
		if q.CurrencyType == content.CurrencySpark {
			earned = earned.Mul(spark)
		}
		amount := earned.Floor().IntPart()

		report.Questions = append(report.Questions, QuestionReward{
			QuestionID: q.ID,
			Obtained:   obtained.InexactFloat64(),
			MaxMarks:   q.TotalMarks(),
			Currency:   c,
			Amount:     amount,
		})
		if amount > 0 {
			report.Rewards[c] += amount
		}
	}
	return report
}

// Multiplier returns the reward multiplier that applies to userID on ws.
func Multiplier(ws content.Worksheet, userID string, s *Settings) float64 {
	return multiplier(ws, userID, resolve(s)).InexactFloat64()
}

func multiplier(ws content.Worksheet, userID string, cfg Settings) decimal.Decimal {
	if IsSample(ws) {
		return decimal.Zero
	}
	switch ws.WorksheetType {
	case content.WorksheetPractice:
		return decimal.NewFromFloat(cfg.RewardPractice)
	case content.WorksheetClassroom:
		return decimal.NewFromFloat(cfg.RewardClassroom)
	}
	if ws.AuthorID == userID {
		return decimal.NewFromFloat(cfg.RewardPractice)
	}
	return decimal.NewFromFloat(cfg.RewardClassroom)
}

// IsSample reports whether ws never pays out: its type is sample or its
// title mentions "sample" in any case.
func IsSample(ws content.Worksheet) bool {
	return ws.WorksheetType == content.WorksheetSample ||
		strings.Contains(strings.ToLower(ws.Title), "sample")
}

// ObtainedMarks returns the marks q earned under results.
func ObtainedMarks(q content.Question, results content.ResultState) float64 {
	return obtainedMarks(q, results).InexactFloat64()
}

func obtainedMarks(q content.Question, results content.ResultState) decimal.Decimal {
	if q.GradingMode != content.GradingAI {
		obtained := decimal.Zero
		for _, sub := range q.SubQuestions() {
			if results[sub.ID].IsCorrect {
				obtained = obtained.Add(decimal.NewFromFloat(sub.Marks))
			}
		}
		return obtained
	}

	// The AI grades a question as a whole and stores one result under the
	// anchor subquestion; results for the other subquestions are ignored.
	res, ok := results[q.AnchorSubQuestionID()]
	if !ok {
		return decimal.Zero
	}
	total := totalMarks(q)

	if res.AIBreakdown != nil && len(q.AIRubric) > 0 {
		obtained := decimal.Zero
		for criterion, weight := range q.AIRubric {
			pct := decimal.NewFromFloat(res.AIBreakdown[criterion]).Div(hundred)
			w := decimal.NewFromInt(int64(weight)).Div(hundred)
			obtained = obtained.Add(pct.Mul(w).Mul(total))
		}
		return obtained
	}

	// A raw score above the question's marks is taken to be a percentage.
	score := decimal.NewFromFloat(res.Score)
	if total.IsPositive() && score.GreaterThan(total) {
		score = score.Div(hundred).Mul(total)
	}
	return score
}

func totalMarks(q content.Question) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range q.SubQuestions() {
		total = total.Add(decimal.NewFromFloat(sub.Marks))
	}
	return total
}
