package clickup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.clickup.com/api/v2"
)

type Workspace struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type TaskPriority struct {
	Id       string `json:"id"`
	Priority string `json:"priority"`
}

type TaskStatus struct {
	Status string `json:"status"`
}

// Task dates are unix milliseconds encoded as strings and may be null.
type Task struct {
	Id          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"text_content"`
	StartDate   *string       `json:"start_date"`
	DueDate     *string       `json:"due_date"`
	URL         string        `json:"url"`
	Priority    *TaskPriority `json:"priority"`
	Status      TaskStatus    `json:"status"`
}

type Client interface {
	GetAuthorizedWorkspaces(ctx context.Context, apiKey string) ([]Workspace, error) // /v2/team
	// GetTasksDueBetween returns one page of the workspace tasks due in [from, to].
	GetTasksDueBetween(ctx context.Context, apiKey string, workspaceId string, page int, from, to time.Time) ([]Task, error) // /v2/team/{team_id}/task
}

type ClientImpl struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *ClientImpl {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ClientImpl{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetAuthorizedWorkspaces retrieves the workspaces the API key has access to
func (c *ClientImpl) GetAuthorizedWorkspaces(ctx context.Context, apiKey string) ([]Workspace, error) {
	var response struct {
		Teams []Workspace `json:"teams"`
	}
	if err := c.get(ctx, apiKey, c.baseURL+"/team", &response); err != nil {
		return nil, err
	}
	return response.Teams, nil
}

func (c *ClientImpl) GetTasksDueBetween(ctx context.Context, apiKey string, workspaceId string, page int, from, to time.Time) ([]Task, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("due_date_gt", strconv.FormatInt(from.UnixMilli(), 10))
	query.Set("due_date_lt", strconv.FormatInt(to.UnixMilli(), 10))
	query.Set("subtasks", "true")
	query.Set("include_closed", "true")
	endpoint := fmt.Sprintf("%s/team/%s/task?%s", c.baseURL, url.PathEscape(workspaceId), query.Encode())

	var response struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.get(ctx, apiKey, endpoint, &response); err != nil {
		return nil, err
	}
	return response.Tasks, nil
}

func (c *ClientImpl) get(ctx context.Context, apiKey string, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return err
	}
	req.Header.Set("Authorization", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ClickUp API returned non-OK status: %d", resp.StatusCode)
		log.Error(err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		log.Errorf("Failed to decode response: %v", err)
		return err
	}
	return nil
}
