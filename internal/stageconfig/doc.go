// Package stageconfig loads, validates, extends and writes stage configuration
// files.
//
// A stage configuration describes a single deployment target (staging or prod):
//
//	{
//	    "Parameters": {"StageName": "staging", "EndpointInstanceType": "ml.m5.large"},
//	    "Tags": {"team": "ml"}
//	}
//
// Parameters must carry a StageName. Tags may be omitted and default to an empty
// mapping. Documents are checked against an embedded CUE schema on load.
//
// Extend merges platform-resolved values (model package, execution role, project
// identity and project tags) into a loaded configuration. The project tag lookup is
// advisory: a failure is logged and the synthetic deployment tags are used alone.
package stageconfig
