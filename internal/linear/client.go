// Package linear implements a read-only client for the Linear GraphQL API.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBase is the public Linear GraphQL endpoint.
const DefaultAPIBase = "https://api.linear.app/graphql"

// Client is a Linear API client. All operations are reads.
type Client struct {
	apiKey     string
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Linear client.
func NewClient(apiKey, apiBase string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		apiKey:  apiKey,
		apiBase: strings.TrimSuffix(apiBase, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// User is a Linear workspace member.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Issue is a Linear issue in the shape the assistant needs.
type Issue struct {
	Identifier    string    `json:"identifier"`
	Title         string    `json:"title"`
	State         string    `json:"-"`
	PriorityLabel string    `json:"priorityLabel"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	jsonBody, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiBase, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	return nil
}

// Probe checks connectivity and credentials by fetching the token's viewer.
func (c *Client) Probe(ctx context.Context) (string, error) {
	var data struct {
		Viewer struct {
			Name string `json:"name"`
		} `json:"viewer"`
	}
	if err := c.execute(ctx, `query { viewer { id name } }`, nil, &data); err != nil {
		return "", err
	}
	return data.Viewer.Name, nil
}

// UserByEmail looks up a workspace member by email. ok is false when no
// member matches; that is an expected absence, not an error.
func (c *Client) UserByEmail(ctx context.Context, email string) (*User, bool, error) {
	const query = `query UserByEmail($email: String!) {
		users(filter: { email: { eq: $email } }, first: 1) {
			nodes { id name email }
		}
	}`
	var data struct {
		Users struct {
			Nodes []User `json:"nodes"`
		} `json:"users"`
	}
	if err := c.execute(ctx, query, map[string]any{"email": email}, &data); err != nil {
		return nil, false, err
	}
	if len(data.Users.Nodes) == 0 {
		return nil, false, nil
	}
	return &data.Users.Nodes[0], true, nil
}

type issueNode struct {
	Identifier    string    `json:"identifier"`
	Title         string    `json:"title"`
	PriorityLabel string    `json:"priorityLabel"`
	UpdatedAt     time.Time `json:"updatedAt"`
	State         struct {
		Name string `json:"name"`
	} `json:"state"`
}

func (n issueNode) toIssue() Issue {
	return Issue{
		Identifier:    n.Identifier,
		Title:         n.Title,
		State:         n.State.Name,
		PriorityLabel: n.PriorityLabel,
		UpdatedAt:     n.UpdatedAt,
	}
}

// ActiveIssues returns up to limit issues assigned to the given user,
// ordered by last update descending.
func (c *Client) ActiveIssues(ctx context.Context, assigneeID string, limit int) ([]Issue, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `query ActiveIssues($assigneeId: ID!, $first: Int!) {
		issues(
			filter: { assignee: { id: { eq: $assigneeId } } }
			orderBy: updatedAt
			first: $first
		) {
			nodes { identifier title priorityLabel updatedAt state { name } }
		}
	}`
	var data struct {
		Issues struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issues"`
	}
	err := c.execute(ctx, query, map[string]any{"assigneeId": assigneeID, "first": limit}, &data)
	if err != nil {
		return nil, err
	}
	out := make([]Issue, 0, len(data.Issues.Nodes))
	for _, n := range data.Issues.Nodes {
		out = append(out, n.toIssue())
	}
	return out, nil
}

// IssueByIdentifier looks up one issue by its human identifier (e.g.
// "ABC-123"). The lookup is case-insensitive; ok is false when Linear has
// no such issue.
func (c *Client) IssueByIdentifier(ctx context.Context, identifier string) (*Issue, bool, error) {
	const query = `query IssueByID($id: String!) {
		issue(id: $id) {
			identifier title priorityLabel updatedAt state { name }
		}
	}`
	var data struct {
		Issue *issueNode `json:"issue"`
	}
	err := c.execute(ctx, query, map[string]any{"id": strings.ToUpper(strings.TrimSpace(identifier))}, &data)
	if err != nil {
		// Linear reports unknown identifiers as an entity-not-found error
		// rather than a null issue.
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, false, nil
		}
		return nil, false, err
	}
	if data.Issue == nil {
		return nil, false, nil
	}
	issue := data.Issue.toIssue()
	return &issue, true, nil
}
