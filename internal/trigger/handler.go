// Package trigger dispatches the deployment GitHub Actions workflow when a model
// package is approved.
//
// The handler runs as a Lambda function behind an EventBridge rule. Failures are
// logged and reported in the response instead of being returned, so a permanent
// misconfiguration does not make the rule retry the invocation.
package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/roach88/mlops-seed/internal/secret"
)

// Response messages.
const (
	MessageSuccess = "Success!"
	MessageFailure = "Failed to trigger the GitHub workflow"
)

// Branch is the branch the workflow is dispatched against.
const Branch = "main"

// Response is returned to the Lambda runtime.
type Response struct {
	Message string `json:"message"`
}

// Handler dispatches the configured workflow.
type Handler struct {
	cfg     Config
	secrets secret.Source
	connect Connector
	logger  *slog.Logger
}

// NewHandler builds a Handler. connect defaults to NewGitHub when nil.
func NewHandler(cfg Config, secrets secret.Source, connect Connector, logger *slog.Logger) *Handler {
	if connect == nil {
		connect = NewGitHub
	}
	return &Handler{cfg: cfg, secrets: secrets, connect: connect, logger: logger}
}

// Handle resolves the token and dispatches the workflow. It never returns an
// error; failures are reported through the response message.
func (h *Handler) Handle(ctx context.Context, event events.CloudWatchEvent) (Response, error) {
	h.logger.Debug("received event", "source", event.Source, "detail_type", event.DetailType, "id", event.ID)
	if err := h.dispatch(ctx); err != nil {
		h.logger.Error(MessageFailure,
			"repo", h.cfg.RepoName,
			"workflow", h.cfg.WorkflowName,
			"error", err,
		)
		return Response{Message: MessageFailure}, nil
	}
	h.logger.Info("triggered the GitHub workflow", "repo", h.cfg.RepoName, "workflow", h.cfg.WorkflowName)
	return Response{Message: MessageSuccess}, nil
}

func (h *Handler) dispatch(ctx context.Context) error {
	token, err := secret.Resolve(ctx, h.secrets, h.cfg.SecretName)
	if err != nil {
		return fmt.Errorf("retrieve secret from Secrets Manager: %w", err)
	}
	if token == "" {
		return fmt.Errorf("secret %s holds an empty token", h.cfg.SecretName)
	}

	gh := h.connect(token)

	owner, repo, err := gh.Repository(ctx, h.cfg.RepoName)
	if err != nil {
		return err
	}
	workflowID, err := gh.Workflow(ctx, owner, repo, h.cfg.WorkflowName)
	if err != nil {
		return err
	}
	branch, err := gh.Branch(ctx, owner, repo, Branch)
	if err != nil {
		return err
	}
	return gh.Dispatch(ctx, owner, repo, workflowID, branch)
}
