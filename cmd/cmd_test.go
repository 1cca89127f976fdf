package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nalanda-edu/nalanda/internal/content"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"value with equals", []string{"a=x=1", " b = 2 m"}, map[string]string{"a": "x=1", "b": " 2 m"}, false},
		{"missing separator", []string{"a"}, nil, true},
		{"missing id", []string{"=1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswers(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindQuestion(t *testing.T) {
	one := &content.Bundle{Questions: []content.Question{{ID: "q1"}}}
	q, err := findQuestion(one, "")
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)

	two := &content.Bundle{Questions: []content.Question{{ID: "q1"}, {ID: "q2"}}}
	_, err = findQuestion(two, "")
	assert.Error(t, err)
	q, err = findQuestion(two, "q2")
	require.NoError(t, err)
	assert.Equal(t, "q2", q.ID)
	_, err = findQuestion(two, "q3")
	assert.Error(t, err)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}

func TestWalletCommands(t *testing.T) {
	t.Setenv("NALANDA_DB_DRIVER", "")
	t.Setenv("NALANDA_LOG_LEVEL", "error")
	db := filepath.Join(t.TempDir(), "wallet.db")

	out, err := run(t, "wallet", "grant", "u1", "--coins", "25", "--ref", "welcome", "--db", db, "--json")
	require.NoError(t, err)
	var r map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "grant", r["kind"])

	_, err = run(t, "wallet", "grant", "u1", "--coins", "25", "--ref", "welcome", "--db", db, "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already applied")

	out, err = run(t, "wallet", "convert", "u1", "20", "coin", "gold", "--db", db, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, map[string]any{"coins": 5.0, "gold": 2.0, "diamonds": 0.0}, r["balance"])

	_, err = run(t, "wallet", "convert", "u1", "20", "coin", "gold", "--db", db, "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient")

	out, err = run(t, "wallet", "history", "u1", "--db", db, "--json")
	require.NoError(t, err)
	var events []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "convert", events[0]["kind"])
}

func TestSettingsCommands(t *testing.T) {
	t.Setenv("NALANDA_LOG_LEVEL", "error")
	db := filepath.Join(t.TempDir(), "settings.db")

	out, err := run(t, "settings", "set", "costPerMark=2", "--db", db, "--json")
	require.NoError(t, err)
	var s map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 2.0, s["costPerMark"])

	_, err = run(t, "settings", "set", "bogus=1", "--db", db, "--json")
	assert.Error(t, err)

	out, err = run(t, "settings", "reset", "--db", db, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 0.5, s["costPerMark"])
}

func TestGradeCommand(t *testing.T) {
	out, err := run(t, "grade", "36 km/h", "--value", "10", "--unit", "m/s", "--tolerance", "0.01", "--json")
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, true, v["isCorrect"])
}

func TestMain(m *testing.M) {
	// Keep tests away from a developer's real wallet database.
	os.Setenv("NALANDA_DB", filepath.Join(os.TempDir(), "nalanda-cmd-test.db"))
	os.Exit(m.Run())
}
