package google

import (
	"context"
	"fmt"
	"net/http"
)

// GTMClient talks to the Tag Manager API v2.
type GTMClient struct {
	c *client
}

// NewGTMClient returns a client bound to cfg.GTMBaseURL.
func NewGTMClient(cfg Config) *GTMClient {
	return &GTMClient{c: newClient(cfg.GTMBaseURL, cfg.HTTPTimeout)}
}

// ---- Accounts ----

// ListAccounts returns every account the token can access.
func (g *GTMClient) ListAccounts(ctx context.Context, token string) ([]Account, error) {
	var out struct {
		Account []Account `json:"account"`
	}
	if err := g.c.do(ctx, token, http.MethodGet, "/accounts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Account, nil
}

// UpdateAccount replaces mutable account fields.
func (g *GTMClient) UpdateAccount(ctx context.Context, token string, account Account) (Account, error) {
	var out Account
	path := fmt.Sprintf("/accounts/%s", account.AccountID)
	if err := g.c.do(ctx, token, http.MethodPut, path, nil, account, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

// ---- Containers ----

// ListContainers returns all containers under an account.
func (g *GTMClient) ListContainers(ctx context.Context, token, accountID string) ([]Container, error) {
	var out struct {
		Container []Container `json:"container"`
	}
	path := fmt.Sprintf("/accounts/%s/containers", accountID)
	if err := g.c.do(ctx, token, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Container, nil
}

// CreateContainer creates a container under its account.
func (g *GTMClient) CreateContainer(ctx context.Context, token string, container Container) (Container, error) {
	var out Container
	path := fmt.Sprintf("/accounts/%s/containers", container.AccountID)
	if err := g.c.do(ctx, token, http.MethodPost, path, nil, container, &out); err != nil {
		return Container{}, err
	}
	return out, nil
}

// UpdateContainer replaces mutable container fields.
func (g *GTMClient) UpdateContainer(ctx context.Context, token string, container Container) (Container, error) {
	var out Container
	path := fmt.Sprintf("/accounts/%s/containers/%s", container.AccountID, container.ContainerID)
	if err := g.c.do(ctx, token, http.MethodPut, path, nil, container, &out); err != nil {
		return Container{}, err
	}
	return out, nil
}

// DeleteContainer removes a container permanently.
func (g *GTMClient) DeleteContainer(ctx context.Context, token string, container Container) error {
	path := fmt.Sprintf("/accounts/%s/containers/%s", container.AccountID, container.ContainerID)
	return g.c.do(ctx, token, http.MethodDelete, path, nil, nil, nil)
}

// ---- Workspaces ----

// ListWorkspaces returns all workspaces in a container.
func (g *GTMClient) ListWorkspaces(ctx context.Context, token, accountID, containerID string) ([]Workspace, error) {
	var out struct {
		Workspace []Workspace `json:"workspace"`
	}
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces", accountID, containerID)
	if err := g.c.do(ctx, token, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Workspace, nil
}

// CreateWorkspace creates a workspace in its container.
func (g *GTMClient) CreateWorkspace(ctx context.Context, token string, ws Workspace) (Workspace, error) {
	var out Workspace
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces", ws.AccountID, ws.ContainerID)
	if err := g.c.do(ctx, token, http.MethodPost, path, nil, ws, &out); err != nil {
		return Workspace{}, err
	}
	return out, nil
}

// UpdateWorkspace replaces mutable workspace fields.
func (g *GTMClient) UpdateWorkspace(ctx context.Context, token string, ws Workspace) (Workspace, error) {
	var out Workspace
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s", ws.AccountID, ws.ContainerID, ws.WorkspaceID)
	if err := g.c.do(ctx, token, http.MethodPut, path, nil, ws, &out); err != nil {
		return Workspace{}, err
	}
	return out, nil
}

// DeleteWorkspace removes a workspace and its pending changes.
func (g *GTMClient) DeleteWorkspace(ctx context.Context, token string, ws Workspace) error {
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s", ws.AccountID, ws.ContainerID, ws.WorkspaceID)
	return g.c.do(ctx, token, http.MethodDelete, path, nil, nil, nil)
}

// ---- Tags ----

// ListTags returns all tags in a workspace.
func (g *GTMClient) ListTags(ctx context.Context, token, accountID, containerID, workspaceID string) ([]Tag, error) {
	var out struct {
		Tag []Tag `json:"tag"`
	}
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/tags", accountID, containerID, workspaceID)
	if err := g.c.do(ctx, token, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tag, nil
}

// CreateTag creates a tag in its workspace.
func (g *GTMClient) CreateTag(ctx context.Context, token string, tag Tag) (Tag, error) {
	var out Tag
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/tags", tag.AccountID, tag.ContainerID, tag.WorkspaceID)
	if err := g.c.do(ctx, token, http.MethodPost, path, nil, tag, &out); err != nil {
		return Tag{}, err
	}
	return out, nil
}

// UpdateTag replaces mutable tag fields.
func (g *GTMClient) UpdateTag(ctx context.Context, token string, tag Tag) (Tag, error) {
	var out Tag
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/tags/%s",
		tag.AccountID, tag.ContainerID, tag.WorkspaceID, tag.TagID)
	if err := g.c.do(ctx, token, http.MethodPut, path, nil, tag, &out); err != nil {
		return Tag{}, err
	}
	return out, nil
}

// DeleteTag removes a tag from its workspace.
func (g *GTMClient) DeleteTag(ctx context.Context, token string, tag Tag) error {
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/tags/%s",
		tag.AccountID, tag.ContainerID, tag.WorkspaceID, tag.TagID)
	return g.c.do(ctx, token, http.MethodDelete, path, nil, nil, nil)
}

// ---- Variables ----

// ListVariables returns all variables in a workspace.
func (g *GTMClient) ListVariables(ctx context.Context, token, accountID, containerID, workspaceID string) ([]Variable, error) {
	var out struct {
		Variable []Variable `json:"variable"`
	}
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/variables", accountID, containerID, workspaceID)
	if err := g.c.do(ctx, token, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Variable, nil
}

// CreateVariable creates a variable in its workspace.
func (g *GTMClient) CreateVariable(ctx context.Context, token string, v Variable) (Variable, error) {
	var out Variable
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/variables", v.AccountID, v.ContainerID, v.WorkspaceID)
	if err := g.c.do(ctx, token, http.MethodPost, path, nil, v, &out); err != nil {
		return Variable{}, err
	}
	return out, nil
}

// UpdateVariable replaces mutable variable fields.
func (g *GTMClient) UpdateVariable(ctx context.Context, token string, v Variable) (Variable, error) {
	var out Variable
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/variables/%s",
		v.AccountID, v.ContainerID, v.WorkspaceID, v.VariableID)
	if err := g.c.do(ctx, token, http.MethodPut, path, nil, v, &out); err != nil {
		return Variable{}, err
	}
	return out, nil
}

// DeleteVariable removes a variable from its workspace.
func (g *GTMClient) DeleteVariable(ctx context.Context, token string, v Variable) error {
	path := fmt.Sprintf("/accounts/%s/containers/%s/workspaces/%s/variables/%s",
		v.AccountID, v.ContainerID, v.WorkspaceID, v.VariableID)
	return g.c.do(ctx, token, http.MethodDelete, path, nil, nil, nil)
}
