package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	models := t.TempDir()
	artifacts := map[string]string{
		"energy_model.json":  `{"kind": "linear", "params": {"coef": [1, 1, 1, 0], "intercept": 100}}`,
		"energy_scaler.json": `{"mean": [0, 0, 0, 0], "scale": [1, 1, 1, 1]}`,
	}
	for name, body := range artifacts {
		require.NoError(t, os.WriteFile(filepath.Join(models, name), []byte(body), 0o644))
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "models:\n  dir: " + models + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestHistoryGenerate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "water.csv")
	stdout, err := execute(t, "history", "generate", "--out", out, "--days", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 10 rows")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,"))
}

func TestPredict_MissingFlag(t *testing.T) {
	_, err := execute(t, "predict", "waste", "--day-of-week", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--location")
}

func TestPredict_UnknownDomain(t *testing.T) {
	_, err := execute(t, "predict", "parking")
	assert.Error(t, err)
}

func TestPredictEnergy(t *testing.T) {
	cfg := writeConfig(t)
	stdout, err := execute(t, "predict", "energy", "-c", cfg,
		"--hour", "1", "--month", "2", "--temperature", "3", "--population-density", "4")
	require.NoError(t, err)
	assert.Contains(t, stdout, "predicted_consumption_kwh")
	assert.Contains(t, stdout, "106")
	assert.Contains(t, stdout, "success")
}

func TestPredict_UnavailableDomain(t *testing.T) {
	cfg := writeConfig(t)
	_, err := execute(t, "predict", "air", "-c", cfg,
		"--month", "1", "--day-of-week", "1", "--temperature", "3", "--wind-speed", "2",
		"--pm25", "10", "--pm10", "20", "--no2", "5", "--co", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models not available for air")
}
