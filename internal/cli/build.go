package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/mlops-seed/internal/cfn"
	"github.com/roach88/mlops-seed/internal/fingerprint"
	"github.com/roach88/mlops-seed/internal/history"
	"github.com/roach88/mlops-seed/internal/platform"
	"github.com/roach88/mlops-seed/internal/stageconfig"
)

// BuildConfigOptions holds flags for the build-config command.
type BuildConfigOptions struct {
	*RootOptions
	ProjectName       string
	Region            string
	ModelPackageGroup string

	ImportStagingConfig string
	ImportProdConfig    string
	ExportStagingConfig string
	ExportStagingParams string
	ExportStagingTags   string
	ExportProdConfig    string
	ExportProdParams    string
	ExportProdTags      string
	ExportCfnParamsTags bool
}

// stageFiles names the input and output files of one stage.
type stageFiles struct {
	name   string
	input  string
	config string
	params string
	tags   string
}

func (o *BuildConfigOptions) stages() []stageFiles {
	return []stageFiles{
		{name: "staging", input: o.ImportStagingConfig, config: o.ExportStagingConfig, params: o.ExportStagingParams, tags: o.ExportStagingTags},
		{name: "prod", input: o.ImportProdConfig, config: o.ExportProdConfig, params: o.ExportProdParams, tags: o.ExportProdTags},
	}
}

// BuildResult is the build-config payload for JSON output.
type BuildResult struct {
	ProjectName       string        `json:"project_name"`
	ProjectID         string        `json:"project_id"`
	ModelPackageGroup string        `json:"model_package_group"`
	ModelPackageARN   string        `json:"model_package_arn"`
	ExecutionRoleARN  string        `json:"execution_role_arn"`
	Stages            []StageResult `json:"stages"`
}

// StageResult describes the files written for one stage.
type StageResult struct {
	Stage      string `json:"stage"`
	StageName  string `json:"stage_name"`
	ConfigPath string `json:"config_path"`
	ParamsPath string `json:"params_path,omitempty"`
	TagsPath   string `json:"tags_path,omitempty"`
	ConfigHash string `json:"config_hash"`
}

// NewBuildConfigCommand creates the build-config command.
func NewBuildConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build-config",
		Short: "Extend stage configs with the latest approved model package",
		Long: `Resolve the latest approved model package of a SageMaker project and write
extended staging and prod configurations.

Each input configuration gains the project name, the model package ARN and the
domain execution role as parameters, plus deployment-stage and project tags. The
project's own tags are copied on top. With --export-cfn-params-tags the
parameters and tags are also written as CloudFormation parameter and tag files.

Example:
  seed build-config --sagemaker-project-name churn --region eu-west-1
  seed build-config --sagemaker-project-name churn --region eu-west-1 --export-cfn-params-tags`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildConfig(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ProjectName, "sagemaker-project-name", "", "SageMaker project name (required)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region (required)")
	cmd.Flags().StringVar(&opts.ModelPackageGroup, "model-package-group-name", "", "model package group (default <project>-<project id>)")
	cmd.Flags().StringVar(&opts.ImportStagingConfig, "import-staging-config", "staging-config.json", "staging config to extend")
	cmd.Flags().StringVar(&opts.ImportProdConfig, "import-prod-config", "prod-config.json", "prod config to extend")
	cmd.Flags().StringVar(&opts.ExportStagingConfig, "export-staging-config", "staging-config-export.json", "extended staging config output")
	cmd.Flags().StringVar(&opts.ExportStagingParams, "export-staging-params", "staging-params-export.json", "staging CloudFormation parameters output")
	cmd.Flags().StringVar(&opts.ExportStagingTags, "export-staging-tags", "staging-tags-export.json", "staging CloudFormation tags output")
	cmd.Flags().StringVar(&opts.ExportProdConfig, "export-prod-config", "prod-config-export.json", "extended prod config output")
	cmd.Flags().StringVar(&opts.ExportProdParams, "export-prod-params", "prod-params-export.json", "prod CloudFormation parameters output")
	cmd.Flags().StringVar(&opts.ExportProdTags, "export-prod-tags", "prod-tags-export.json", "prod CloudFormation tags output")
	cmd.Flags().BoolVar(&opts.ExportCfnParamsTags, "export-cfn-params-tags", false, "also write CloudFormation parameter and tag files")
	_ = cmd.MarkFlagRequired("sagemaker-project-name")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

func runBuildConfig(opts *BuildConfigOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ledger, err := openLedger(opts.RootOptions)
	if err != nil {
		return out.FailWith(ErrCodeHistory, ExitCommandError, "failed to open ledger", err)
	}
	defer closeLedger(ledger, logger)

	clients, err := opts.clients()(ctx, opts.Region)
	if err != nil {
		return out.Fail("failed to create AWS clients", err)
	}
	sm := platform.New(clients.SageMaker, logger)

	project, err := sm.DescribeProject(ctx, opts.ProjectName)
	if err != nil {
		return out.Fail("failed to describe project", err)
	}

	group := opts.ModelPackageGroup
	if group == "" {
		group = platform.DefaultModelPackageGroup(project)
	}

	packageARN, err := sm.LatestApprovedPackage(ctx, group)
	if err != nil {
		return out.Fail("failed to resolve model package", err)
	}
	out.VerboseLog("Resolved model package %s from group %s", packageARN, group)

	roleARN, err := sm.ExecutionRole(ctx, project.DomainID)
	if err != nil {
		return out.Fail("failed to resolve execution role", err)
	}
	out.VerboseLog("Resolved execution role %s", roleARN)

	ext := stageconfig.ExtensionContext{
		ProjectName:      project.Name,
		ProjectID:        project.ID,
		ProjectARN:       project.ARN,
		ModelPackageARN:  packageARN,
		ExecutionRoleARN: roleARN,
	}

	result := BuildResult{
		ProjectName:       project.Name,
		ProjectID:         project.ID,
		ModelPackageGroup: group,
		ModelPackageARN:   packageARN,
		ExecutionRoleARN:  roleARN,
	}

	for _, stage := range opts.stages() {
		res, err := buildStage(ctx, opts, logger, sm, ext, stage)
		if err != nil {
			return out.Fail(fmt.Sprintf("failed to build %s config", stage.name), err)
		}
		result.Stages = append(result.Stages, res)
		out.VerboseLog("Wrote %s config (hash %s)", res.Stage, shortHash(res.ConfigHash))

		err = record(ctx, ledger, logger, history.Entry{
			Kind:            history.KindBuildConfig,
			ProjectName:     project.Name,
			ProjectID:       project.ID,
			Stage:           res.StageName,
			ModelPackageARN: packageARN,
			ConfigHash:      res.ConfigHash,
		})
		if err != nil {
			return out.FailWith(ErrCodeHistory, ExitFailure, "failed to record build", err)
		}
	}

	if opts.Format == "json" {
		return out.JSON(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Model package: %s\n", packageARN)
	fmt.Fprintf(w, "Execution role: %s\n", roleARN)
	for _, s := range result.Stages {
		fmt.Fprintf(w, "✓ %s config written to %s\n", s.Stage, s.ConfigPath)
		if s.ParamsPath != "" {
			fmt.Fprintf(w, "  parameters: %s\n", s.ParamsPath)
			fmt.Fprintf(w, "  tags: %s\n", s.TagsPath)
		}
	}
	return nil
}

// buildStage extends one stage configuration and writes its exports.
func buildStage(ctx context.Context, opts *BuildConfigOptions, logger *slog.Logger, tags stageconfig.TagSource, ext stageconfig.ExtensionContext, stage stageFiles) (StageResult, error) {
	cfg, err := stageconfig.Load(stage.input)
	if err != nil {
		return StageResult{}, err
	}

	extended, err := stageconfig.Extend(ctx, logger, cfg, ext, tags)
	if err != nil {
		return StageResult{}, err
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		if body, err := stageconfig.MarshalIndent(extended); err == nil {
			logger.Debug("extended config", "stage", stage.name, "config", string(body))
		}
	}

	if err := stageconfig.Write(stage.config, extended); err != nil {
		return StageResult{}, err
	}

	stageName, _ := extended.StageName()
	res := StageResult{
		Stage:      stage.name,
		StageName:  stageName,
		ConfigPath: stage.config,
	}

	if opts.ExportCfnParamsTags {
		if err := cfn.WriteExports(extended, stage.params, stage.tags); err != nil {
			return StageResult{}, err
		}
		res.ParamsPath = stage.params
		res.TagsPath = stage.tags
	}

	res.ConfigHash, err = fingerprint.StageConfig(extended)
	if err != nil {
		return StageResult{}, err
	}
	return res, nil
}
