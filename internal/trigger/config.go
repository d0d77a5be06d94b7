package trigger

import (
	"fmt"
	"strings"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvRepoName     = "DeployRepoName"
	EnvWorkflowName = "GitHubWorkflowNameForDeployment"
	EnvSecretName   = "GitHubTokenSecretName"
	EnvRegion       = "Region"
)

// Config is the trigger's configuration, read once at process start.
type Config struct {
	RepoName     string
	WorkflowName string
	SecretName   string
	Region       string
}

// ConfigurationError lists required settings that are missing.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// ConfigFromEnv builds a Config using lookup, normally os.LookupEnv.
// Every variable is required; empty values count as missing.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := Config{
		RepoName:     get(EnvRepoName),
		WorkflowName: get(EnvWorkflowName),
		SecretName:   get(EnvSecretName),
		Region:       get(EnvRegion),
	}
	if len(missing) > 0 {
		return Config{}, &ConfigurationError{Missing: missing}
	}
	return cfg, nil
}
