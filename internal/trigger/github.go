package trigger

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/go-github/v66/github"
)

// GitHub is the sequence of GitHub calls a dispatch needs.
type GitHub interface {
	// Repository finds name among the authenticated user's repositories.
	Repository(ctx context.Context, name string) (owner, repo string, err error)
	// Workflow resolves a workflow by numeric id or file name.
	Workflow(ctx context.Context, owner, repo, name string) (int64, error)
	Branch(ctx context.Context, owner, repo, name string) (string, error)
	Dispatch(ctx context.Context, owner, repo string, workflowID int64, ref string) error
}

// Connector opens a GitHub session for a token.
type Connector func(token string) GitHub

// NewGitHub returns a GitHub backed by the REST API, authenticated with token.
func NewGitHub(token string) GitHub {
	return &restGitHub{client: github.NewClient(nil).WithAuthToken(token)}
}

type restGitHub struct {
	client *github.Client
}

func (g *restGitHub) Repository(ctx context.Context, name string) (string, string, error) {
	user, _, err := g.client.Users.Get(ctx, "")
	if err != nil {
		return "", "", fmt.Errorf("get authenticated user: %w", err)
	}
	repo, _, err := g.client.Repositories.Get(ctx, user.GetLogin(), name)
	if err != nil {
		return "", "", fmt.Errorf("get repository %s/%s: %w", user.GetLogin(), name, err)
	}
	return repo.GetOwner().GetLogin(), repo.GetName(), nil
}

func (g *restGitHub) Workflow(ctx context.Context, owner, repo, name string) (int64, error) {
	var (
		wf  *github.Workflow
		err error
	)
	if id, perr := strconv.ParseInt(name, 10, 64); perr == nil {
		wf, _, err = g.client.Actions.GetWorkflowByID(ctx, owner, repo, id)
	} else {
		wf, _, err = g.client.Actions.GetWorkflowByFileName(ctx, owner, repo, name)
	}
	if err != nil {
		return 0, fmt.Errorf("get workflow %s: %w", name, err)
	}
	return wf.GetID(), nil
}

func (g *restGitHub) Branch(ctx context.Context, owner, repo, name string) (string, error) {
	b, _, err := g.client.Repositories.GetBranch(ctx, owner, repo, name, 1)
	if err != nil {
		return "", fmt.Errorf("get branch %s: %w", name, err)
	}
	return b.GetName(), nil
}

func (g *restGitHub) Dispatch(ctx context.Context, owner, repo string, workflowID int64, ref string) error {
	resp, err := g.client.Actions.CreateWorkflowDispatchEventByID(ctx, owner, repo, workflowID, github.CreateWorkflowDispatchEventRequest{
		Ref: ref,
	})
	if err != nil {
		return fmt.Errorf("dispatch workflow %d: %w", workflowID, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("dispatch workflow %d: unexpected status %s", workflowID, resp.Status)
	}
	return nil
}
