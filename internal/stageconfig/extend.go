package stageconfig

import (
	"context"
	"log/slog"
	"maps"
)

// Parameter keys read or written by Extend.
const (
	ParamStageName        = "StageName"
	ParamProjectName      = "SageMakerProjectName"
	ParamModelPackageName = "ModelPackageName"
	ParamExecutionRoleARN = "ModelExecutionRoleArn"
)

// Tag keys written by Extend.
const (
	TagDeploymentStage = "sagemaker:deployment-stage"
	TagProjectID       = "sagemaker:project-id"
	TagProjectName     = "sagemaker:project-name"
)

// ExtensionContext carries the platform-resolved values merged into a stage
// configuration.
type ExtensionContext struct {
	ProjectName      string
	ProjectID        string
	ProjectARN       string
	ModelPackageARN  string
	ExecutionRoleARN string
}

// TagSource lists the tags attached to a project.
type TagSource interface {
	ProjectTags(ctx context.Context, projectARN string) (map[string]string, error)
}

// ProjectTagsOrEmpty returns the project's tags, or an empty map if they cannot be
// listed. The failure is logged and never returned.
func ProjectTagsOrEmpty(ctx context.Context, logger *slog.Logger, src TagSource, projectARN string) map[string]string {
	if src == nil {
		return map[string]string{}
	}
	tags, err := src.ProjectTags(ctx, projectARN)
	if err != nil {
		logger.Error("error getting project tags", "project_arn", projectARN, "error", err)
		return map[string]string{}
	}
	if tags == nil {
		return map[string]string{}
	}
	return tags
}

// Extend returns a copy of cfg with the project parameters and tags merged in.
//
// Extension parameters override same-named parameters from cfg. Tags are layered
// as cfg tags, then the synthetic deployment tags, then the project's own tags, so
// a project tag can override a synthetic one. cfg is not modified.
//
// A ConfigurationError is returned, before any tag lookup, when cfg has no
// Parameters or no StageName.
func Extend(ctx context.Context, logger *slog.Logger, cfg *StageConfig, ext ExtensionContext, src TagSource) (*StageConfig, error) {
	if cfg == nil || cfg.Parameters == nil {
		return nil, &ConfigurationError{Field: "Parameters", Message: "Configuration file must include StageName parameter"}
	}
	stage, ok := cfg.StageName()
	if !ok {
		return nil, &ConfigurationError{Field: "Parameters." + ParamStageName, Message: "Configuration file must include StageName parameter"}
	}

	out := cfg.Clone()

	maps.Copy(out.Parameters, map[string]string{
		ParamProjectName:      ext.ProjectName,
		ParamModelPackageName: ext.ModelPackageARN,
		ParamExecutionRoleARN: ext.ExecutionRoleARN,
	})

	tags := map[string]string{
		TagDeploymentStage: stage,
		TagProjectID:       ext.ProjectID,
		TagProjectName:     ext.ProjectName,
	}
	maps.Copy(tags, ProjectTagsOrEmpty(ctx, logger, src, ext.ProjectARN))
	maps.Copy(out.Tags, tags)

	logger.Debug("extended stage config",
		"stage", stage,
		"parameters", len(out.Parameters),
		"tags", len(out.Tags),
	)
	return out, nil
}
