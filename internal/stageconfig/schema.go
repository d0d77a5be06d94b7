package stageconfig

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// schemaSource constrains stage configuration documents. Parameter and tag values
// are strings because they end up as CloudFormation parameter and tag values.
const schemaSource = `
#StageConfig: {
	Parameters: {
		StageName: string
		[string]:  string
	}
	Tags?: {[string]: string}
	...
}
`

// Validate checks a JSON document against the stage configuration schema.
func Validate(name string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("stageconfig.cue")).
		LookupPath(cue.ParsePath("#StageConfig"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile stage config schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return &ConfigurationError{Path: name, Message: "invalid JSON: " + errorDetails(err)}
	}

	if !doc.LookupPath(cue.ParsePath("Parameters")).Exists() {
		return &ConfigurationError{Path: name, Field: "Parameters", Message: "Configuration file must include StageName parameter"}
	}
	if !doc.LookupPath(cue.MakePath(cue.Str("Parameters"), cue.Str(ParamStageName))).Exists() {
		return &ConfigurationError{Path: name, Field: "Parameters." + ParamStageName, Message: "Configuration file must include StageName parameter"}
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &ConfigurationError{Path: name, Message: errorDetails(err)}
	}
	return nil
}

// errorDetails flattens a CUE error list into one line.
func errorDetails(err error) string {
	details := strings.TrimSpace(cueerrors.Details(err, nil))
	return strings.ReplaceAll(details, "\n", "; ")
}
