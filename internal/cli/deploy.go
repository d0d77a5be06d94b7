package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mlops-seed/internal/cfn"
	"github.com/roach88/mlops-seed/internal/fingerprint"
	"github.com/roach88/mlops-seed/internal/history"
	"github.com/roach88/mlops-seed/internal/platform"
	"github.com/roach88/mlops-seed/internal/stack"
	"github.com/roach88/mlops-seed/internal/stageconfig"
)

// DeployStackOptions holds flags for the deploy-stack command.
type DeployStackOptions struct {
	*RootOptions
	StackKind    string
	Region       string
	ParamFile    string
	ProjectName  string
	TemplateFile string
}

// DeployResult is the deploy-stack payload for JSON output.
type DeployResult struct {
	StackName  string       `json:"stack_name"`
	Action     stack.Action `json:"action"`
	Stage      string       `json:"stage"`
	ConfigHash string       `json:"config_hash"`
}

// NewDeployStackCommand creates the deploy-stack command.
func NewDeployStackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeployStackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deploy-stack",
		Short: "Create or update the endpoint stack of one stage",
		Long: `Create or update the CloudFormation stack sagemaker-<stack-name>-<project>-<project id>
from an extended stage configuration.

The stack is created first. If it already exists it is updated once with the
same template, parameters and tags.

Example:
  seed deploy-stack --stack-name staging --region eu-west-1 \
    --param-file staging-config-export.json --project-name churn`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeployStack(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.StackKind, "stack-name", "", "stack kind, e.g. staging or prod (required)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region (required)")
	cmd.Flags().StringVar(&opts.ParamFile, "param-file", "", "extended stage config to deploy (required)")
	cmd.Flags().StringVar(&opts.ProjectName, "project-name", "", "SageMaker project name (required)")
	cmd.Flags().StringVar(&opts.TemplateFile, "template-file", stack.DefaultTemplateFile, "CloudFormation template")
	for _, name := range []string{"stack-name", "region", "param-file", "project-name"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runDeployStack(opts *DeployStackOptions, cmd *cobra.Command) error {
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

	// Local inputs are checked before any remote call.
	cfg, err := stageconfig.Load(opts.ParamFile)
	if err != nil {
		return out.Fail("failed to load parameter file", err)
	}
	params, tags := cfn.Shape(cfg)

	template, err := stack.LoadTemplate(opts.TemplateFile)
	if err != nil {
		return out.FailWith(ErrCodeTemplate, ExitCommandError, "failed to load template", err)
	}

	clients, err := opts.clients()(ctx, opts.Region)
	if err != nil {
		return out.Fail("failed to create AWS clients", err)
	}

	project, err := platform.New(clients.SageMaker, logger).DescribeProject(ctx, opts.ProjectName)
	if err != nil {
		return out.Fail("failed to describe project", err)
	}
	name := stack.Name(opts.StackKind, project.Name, project.ID)
	out.VerboseLog("Deploying stack %s from %s", name, opts.TemplateFile)

	action, err := stack.NewDeployer(clients.CloudFormation, logger).Deploy(ctx, stack.Request{
		StackName:    name,
		TemplateBody: template,
		Parameters:   params,
		Tags:         tags,
	})
	if err != nil {
		return out.Fail("failed to deploy stack", err)
	}

	hash, err := fingerprint.StageConfig(cfg)
	if err != nil {
		return out.Fail("failed to fingerprint config", err)
	}
	stageName, _ := cfg.StageName()

	err = record(ctx, ledger, logger, history.Entry{
		Kind:            history.KindDeployStack,
		ProjectName:     project.Name,
		ProjectID:       project.ID,
		Stage:           stageName,
		ModelPackageARN: cfg.Parameters[stageconfig.ParamModelPackageName],
		StackName:       name,
		Action:          string(action),
		ConfigHash:      hash,
	})
	if err != nil {
		return out.FailWith(ErrCodeHistory, ExitFailure, "failed to record deployment", err)
	}

	result := DeployResult{StackName: name, Action: action, Stage: stageName, ConfigHash: hash}
	if opts.Format == "json" {
		return out.JSON(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Stack %s %s\n", name, action)
	return nil
}
