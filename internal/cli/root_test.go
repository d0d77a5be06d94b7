package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "seed", cmd.Use)
	assert.Contains(t, cmd.Long, "SageMaker")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"build-config", "deploy-stack", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Setenv("LOGLEVEL", "")
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "info", levelFlag.DefValue)

	historyFlag := cmd.PersistentFlags().Lookup("history-db")
	require.NotNil(t, historyFlag)
	assert.Equal(t, "", historyFlag.DefValue)
}

func TestLogLevelDefaultsFromEnvironment(t *testing.T) {
	t.Setenv("LOGLEVEL", "DEBUG")
	cmd := NewRootCommand()

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "debug", levelFlag.DefValue)
}

func TestBuildConfigCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	buildCmd, _, err := cmd.Find([]string{"build-config"})
	require.NoError(t, err)

	defaults := map[string]string{
		"sagemaker-project-name":   "",
		"region":                   "",
		"model-package-group-name": "",
		"import-staging-config":    "staging-config.json",
		"import-prod-config":       "prod-config.json",
		"export-staging-config":    "staging-config-export.json",
		"export-staging-params":    "staging-params-export.json",
		"export-staging-tags":      "staging-tags-export.json",
		"export-prod-config":       "prod-config-export.json",
		"export-prod-params":       "prod-params-export.json",
		"export-prod-tags":         "prod-tags-export.json",
		"export-cfn-params-tags":   "false",
	}
	for name, def := range defaults {
		flag := buildCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag --%s", name)
		assert.Equal(t, def, flag.DefValue, "flag --%s", name)
	}
}

func TestDeployStackCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	deployCmd, _, err := cmd.Find([]string{"deploy-stack"})
	require.NoError(t, err)

	templateFlag := deployCmd.Flags().Lookup("template-file")
	require.NotNil(t, templateFlag)
	assert.Equal(t, "endpoint-config-template.yml", templateFlag.DefValue)

	for _, name := range []string{"stack-name", "region", "param-file", "project-name"} {
		flag := deployCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag --%s", name)
		// required flags have no default
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("history", "--format", "yaml", "--history-db", env.ledgerDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidLogLevel(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("history", "--log-level", "loud", "--history-db", env.ledgerDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestMissingRequiredFlags(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("build-config", "--region", "eu-west-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sagemaker-project-name")
	assert.Empty(t, env.regions, "no client may be built without required flags")
}
