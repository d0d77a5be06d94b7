package stageconfig

import "fmt"

// ConfigurationError reports a stage configuration that cannot be used.
// It is always fatal for the run that hit it.
type ConfigurationError struct {
	// Path is the file the configuration came from, empty for in-memory values.
	Path string

	// Field names the offending field (e.g. "Parameters.StageName"), if known.
	Field string

	Message string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Message)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// WriteError reports an output file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
