// Package stack creates or updates the CloudFormation stack that hosts a stage's
// model endpoint.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mlops-seed/internal/cfn"
	"github.com/roach88/mlops-seed/internal/platform"
)

// DefaultTemplateFile is the template deployed when none is given.
const DefaultTemplateFile = "endpoint-config-template.yml"

// Action records which call brought the stack up to date.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// API is the subset of the CloudFormation client used here.
type API interface {
	CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, in *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
}

// Name returns the stack name for a stack kind within a project.
func Name(kind, projectName, projectID string) string {
	return fmt.Sprintf("sagemaker-%s-%s-%s", kind, projectName, projectID)
}

// LoadTemplate reads a template body and checks it is well-formed YAML.
// CloudFormation short-form intrinsics (!Ref, !Sub, ...) are accepted as tags.
func LoadTemplate(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse template %s: %w", path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return "", fmt.Errorf("parse template %s: top level is not a mapping", path)
	}
	return string(raw), nil
}

// Request describes one deployment.
type Request struct {
	StackName    string
	TemplateBody string
	Parameters   cfn.ParameterList
	Tags         cfn.TagList
}

// Deployer brings a stack to the requested state.
type Deployer struct {
	api    API
	logger *slog.Logger
}

// NewDeployer wraps api.
func NewDeployer(api API, logger *slog.Logger) *Deployer {
	return &Deployer{api: api, logger: logger}
}

// Deploy creates the stack, or updates it when creation fails because the stack
// already exists. There is exactly one fallback and no other retry.
func (d *Deployer) Deploy(ctx context.Context, req Request) (Action, error) {
	params := req.Parameters.SDK()
	tags := req.Tags.SDK()

	_, err := d.api.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:    aws.String(req.StackName),
		TemplateBody: aws.String(req.TemplateBody),
		Parameters:   params,
		Tags:         tags,
	})
	if err == nil {
		d.logger.Info("creating a new stack", "stack", req.StackName)
		return ActionCreated, nil
	}

	var exists *types.AlreadyExistsException
	if !errors.As(err, &exists) {
		return "", platform.WrapRemote("CreateStack", err)
	}

	_, err = d.api.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(req.StackName),
		TemplateBody: aws.String(req.TemplateBody),
		Parameters:   params,
		Tags:         tags,
	})
	if err != nil {
		return "", platform.WrapRemote("UpdateStack", err)
	}
	d.logger.Info("updating existing stack", "stack", req.StackName)
	return ActionUpdated, nil
}
