package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/racehorse-ledger/internal/config"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")
	content := "app:\n  log_level: error\npaths:\n  root: " + root + "\nmetrics:\n  enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, root
}

// resetFlags restores every flag in the tree to its default so one run's
// flags are not seen as set by the next.
func resetFlags(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeTestPrediction(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, "data", "predictions")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-05-01.json"),
		[]byte(`{"selection":{"course":"Ascot","time":"14:30","horse":"Thunderbolt","odds_decimal":3.5}}`), 0o644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	isInteractive = func() bool { return false }
	prompter = nil

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLedgerAppendAndSummary(t *testing.T) {
	configPath, root := writeTestConfig(t)

	out, err := execute(t, "-c", configPath, "--env-file", "", "ledger", "append",
		"--date", "2024-05-01", "--course", "Ascot", "--time", "14:30", "--horse", "Thunderbolt",
		"--odds", "3.5", "--result", "win")
	require.NoError(t, err)
	assert.Contains(t, out, "cumulative 2.5000, ROI 2.5000")

	out, err = execute(t, "-c", configPath, "--env-file", "", "ledger", "append",
		"--date", "2024-05-02", "--course", "Epsom", "--time", "15:00", "--horse", "Silver Arrow",
		"--odds", "5.0", "--result", "LOSE")
	require.NoError(t, err)
	assert.Contains(t, out, "cumulative 1.5000, ROI 0.7500")

	data, err := os.ReadFile(filepath.Join(root, "data", "metrics", "summary.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"date,course,time,horse,odds_decimal,result,profit_units,cum_profit_units,roi_total\n"+
			"2024-05-01,Ascot,14:30,Thunderbolt,3.5000,win,2.5000,2.5000,2.5000\n"+
			"2024-05-02,Epsom,15:00,Silver Arrow,5.0000,lose,-1.0000,1.5000,0.7500\n",
		string(data))

	out, err = execute(t, "-c", configPath, "--env-file", "", "ledger", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Bets:              2 (1 won, 1 lost)")
	assert.Contains(t, out, "Max drawdown:      1.0000 units")

	_, err = os.Stat(filepath.Join(root, "data", "metrics", "racehorse.prom"))
	assert.NoError(t, err, "metrics textfile written")
}

func TestLedgerAppendRejectsUnknownResult(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	_, err := execute(t, "-c", configPath, "--env-file", "", "ledger", "append",
		"--date", "2024-05-03", "--course", "York", "--time", "13:50", "--horse", "Nope",
		"--odds", "2", "--result", "void")
	assert.Error(t, err)
}

func TestSettleRequiresWonFlagWithoutTerminal(t *testing.T) {
	configPath, root := writeTestConfig(t)
	writeTestPrediction(t, root)

	_, err := execute(t, "-c", configPath, "--env-file", "", "settle", "--date", "2024-05-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--won")

	out, err := execute(t, "-c", configPath, "--env-file", "", "settle", "--date", "2024-05-01", "--won")
	require.NoError(t, err)
	assert.Contains(t, out, "Profit 2.5000, cumulative 2.5000, ROI 2.5000")
}

func TestCheckReportsMissingTemplate(t *testing.T) {
	configPath, root := writeTestConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "prompts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "prompts", "value_bet.txt"), []byte("pick"), 0o644))

	out, err := execute(t, "-c", configPath, "--env-file", "", "check", "--skip-model")
	require.Error(t, err)
	assert.Contains(t, out, "template")
	assert.Contains(t, out, "Status: not_ready")
	assert.Contains(t, out, "prompt           ok")
}

func TestFlagsDoNotCarryOverBetweenRuns(t *testing.T) {
	firstConfig, firstRoot := writeTestConfig(t)
	writeTestPrediction(t, firstRoot)
	_, err := execute(t, "-c", firstConfig, "--env-file", "", "settle", "--date", "2024-05-01", "--won", "--sp", "4")
	require.NoError(t, err)

	secondConfig, secondRoot := writeTestConfig(t)
	writeTestPrediction(t, secondRoot)
	_, err = execute(t, "-c", secondConfig, "--env-file", "", "settle", "--date", "2024-05-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--won")

	_, statErr := os.Stat(filepath.Join(secondRoot, "data", "metrics", "summary.csv"))
	assert.True(t, os.IsNotExist(statErr), "second ledger untouched")
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "--env-file", "", "ledger", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestNewAppLoggerReportsCallerInDevelopment(t *testing.T) {
	dev := &config.Config{App: config.AppConfig{Environment: "development", LogLevel: "error"}}
	assert.True(t, newAppLogger(dev).ReportCaller)

	prod := &config.Config{App: config.AppConfig{Environment: "production", LogLevel: "error"}}
	assert.False(t, newAppLogger(prod).ReportCaller)
}
