package clickup

import (
	"context"
	"sync"
	"time"
)

type ClientStub struct {
	mu         sync.RWMutex
	workspaces []Workspace
	// tasks per workspace, split into pages
	tasks         map[string][][]Task
	workspacesErr error
	tasksErr      error
	apiKeys       []string
}

func NewClientStub() *ClientStub {
	return &ClientStub{tasks: make(map[string][][]Task)}
}

func (c *ClientStub) GetAuthorizedWorkspaces(_ context.Context, apiKey string) ([]Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKeys = append(c.apiKeys, apiKey)
	if c.workspacesErr != nil {
		return nil, c.workspacesErr
	}
	result := make([]Workspace, len(c.workspaces))
	copy(result, c.workspaces)
	return result, nil
}

func (c *ClientStub) GetTasksDueBetween(_ context.Context, _ string, workspaceId string, page int, _, _ time.Time) ([]Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tasksErr != nil {
		return nil, c.tasksErr
	}
	pages := c.tasks[workspaceId]
	if page >= len(pages) {
		return []Task{}, nil
	}
	return pages[page], nil
}

func (c *ClientStub) AddWorkspace(w Workspace, pages ...[]Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workspaces = append(c.workspaces, w)
	c.tasks[w.Id] = pages
}
