package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/grader"
	"github.com/nalanda-edu/nalanda/internal/ui/components"
	"github.com/nalanda-edu/nalanda/internal/ui/theme"
)

var gradeCmd = &cobra.Command{
	Use:   "grade [answer]",
	Short: "Check an answer against a reference value or a bundled question",
	Example: `  nalanda grade "36 km/h" --value 10 --unit m/s --tolerance 0.01
  nalanda grade --bundle motion.json --question q1 --answer q1-a="9.8 m/s^2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("bundle"); path != "" {
			return gradeQuestion(cmd, path)
		}
		if len(args) != 1 {
			return errors.New("an answer is required unless --bundle is given")
		}

		value, _ := cmd.Flags().GetFloat64("value")
		unit, _ := cmd.Flags().GetString("unit")
		tolerance, _ := cmd.Flags().GetFloat64("tolerance")
		if tolerance < 0 {
			return errors.New("--tolerance must be non-negative")
		}

		v := grader.CheckNumericalAnswer(args[0], value, unit, tolerance)
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), v)
		}
		_, err := lipgloss.Fprintln(cmd.OutOrStdout(), theme.Verdict(v.IsCorrect, v.Feedback))
		return err
	},
}

func gradeQuestion(cmd *cobra.Command, path string) error {
	b, err := loadBundle(cmd, path)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}
	id, _ := cmd.Flags().GetString("question")
	q, err := findQuestion(b, id)
	if err != nil {
		return err
	}
	if q.GradingMode == content.GradingAI {
		return fmt.Errorf("question %s is graded by AI", q.ID)
	}

	raw, _ := cmd.Flags().GetStringArray("answer")
	answers, err := parseAnswers(raw)
	if err != nil {
		return err
	}

	results, verdicts := grader.GradeQuestion(q, answers)
	obtained := economy.ObtainedMarks(q, results)
	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"results":  results,
			"verdicts": verdicts,
			"obtained": obtained,
			"total":    q.TotalMarks(),
		})
	}

	out := cmd.OutOrStdout()
	lipgloss.Fprintln(out, theme.Title.Render("Question "+q.ID))
	for _, sub := range q.SubQuestions() {
		v, ok := verdicts[sub.ID]
		if !ok {
			lipgloss.Fprintln(out, theme.Field(sub.ID, theme.Hint.Render("not attempted")))
			continue
		}
		lipgloss.Fprintln(out, theme.Field(sub.ID, theme.Verdict(v.IsCorrect, v.Feedback)))
	}
	lipgloss.Fprintln(out, theme.Field("Marks", fmt.Sprintf("%s / %s  %s",
		formatMarks(obtained), formatMarks(q.TotalMarks()),
		components.NewMarksBar(obtained, q.TotalMarks(), barWidth).View())))
	return nil
}

func findQuestion(b *content.Bundle, id string) (content.Question, error) {
	if id == "" {
		if len(b.Questions) == 1 {
			return b.Questions[0], nil
		}
		return content.Question{}, errors.New("--question is required when the bundle has several questions")
	}
	for _, q := range b.Questions {
		if q.ID == id {
			return q, nil
		}
	}
	return content.Question{}, fmt.Errorf("question %q not in bundle", id)
}

// parseAnswers reads repeated subquestion=answer flags.
func parseAnswers(raw []string) (map[string]string, error) {
	answers := make(map[string]string, len(raw))
	for _, a := range raw {
		id, answer, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid --answer %q: want <subquestion>=<answer>", a)
		}
		answers[strings.TrimSpace(id)] = answer
	}
	return answers, nil
}

const barWidth = 26

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sortedKeys returns the keys of m in order, for stable reports.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	gradeCmd.Flags().Float64("value", 0, "Reference value")
	gradeCmd.Flags().String("unit", "", "Reference unit, e.g. m/s")
	gradeCmd.Flags().Float64("tolerance", 0, "Accepted absolute difference in the reference unit")
	gradeCmd.Flags().String("bundle", "", "Grade a question from a bundle file (- for stdin)")
	gradeCmd.Flags().String("question", "", "Question id within --bundle")
	gradeCmd.Flags().StringArray("answer", nil, "Answer as <subquestion>=<answer>; repeatable")
}
