package railway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Railway GraphQL API endpoint.
	DefaultBaseURL = "https://backboard.railway.app/graphql/v2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client is a Railway GraphQL API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Railway API client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// graphqlRequest is the wire format for a GraphQL query.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// query executes a GraphQL query and decodes the "data" object into result.
func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	if c.logger != nil {
		c.logger.Debug().Str("url", c.baseURL).Msg("Railway API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return &APIError{StatusCode: resp.StatusCode, Body: envelope.Errors[0].Message}
	}

	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}

const servicesQuery = `
query GetServices($projectId: String!) {
    project(id: $projectId) {
        name
        services {
            edges {
                node {
                    id
                    name
                    deployments(first: 1) {
                        edges {
                            node {
                                id
                                status
                            }
                        }
                    }
                }
            }
        }
    }
}`

// ListServices returns every service in the project with its latest
// deployment id and status. Services without any deployment are omitted.
func (c *Client) ListServices(ctx context.Context, projectID string) ([]models.ServiceInfo, error) {
	var data struct {
		Project *struct {
			Name     string `json:"name"`
			Services struct {
				Edges []struct {
					Node struct {
						ID          string `json:"id"`
						Name        string `json:"name"`
						Deployments struct {
							Edges []struct {
								Node struct {
									ID     string `json:"id"`
									Status string `json:"status"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"deployments"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"services"`
		} `json:"project"`
	}

	if err := c.query(ctx, servicesQuery, map[string]interface{}{"projectId": projectID}, &data); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	if data.Project == nil {
		return nil, &APIError{StatusCode: http.StatusOK, Body: fmt.Sprintf("project %s not found", projectID)}
	}

	var services []models.ServiceInfo
	for _, edge := range data.Project.Services.Edges {
		node := edge.Node
		deployments := node.Deployments.Edges
		if len(deployments) == 0 {
			continue
		}

		services = append(services, models.ServiceInfo{
			ID:           node.ID,
			Name:         node.Name,
			DeploymentID: deployments[0].Node.ID,
			Status:       models.DeploymentStatus(deployments[0].Node.Status),
		})
	}

	if c.logger != nil {
		c.logger.Debug().Int("services", len(services)).Msg("Railway services listed")
	}

	return services, nil
}

const deploymentLogsQuery = `
query GetLogs($deploymentId: String!, $limit: Int!) {
    deploymentLogs(deploymentId: $deploymentId, limit: $limit) {
        message
        timestamp
        severity
    }
}`

// DeploymentLogs returns the most recent log entries for a deployment, in
// the order the platform returned them.
func (c *Client) DeploymentLogs(ctx context.Context, deploymentID string, limit int) ([]models.LogEntry, error) {
	var data struct {
		DeploymentLogs []struct {
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
			Severity  string `json:"severity"`
		} `json:"deploymentLogs"`
	}

	variables := map[string]interface{}{
		"deploymentId": deploymentID,
		"limit":        limit,
	}
	if err := c.query(ctx, deploymentLogsQuery, variables, &data); err != nil {
		return nil, fmt.Errorf("failed to get deployment logs: %w", err)
	}

	entries := make([]models.LogEntry, 0, len(data.DeploymentLogs))
	for _, raw := range data.DeploymentLogs {
		entry := models.LogEntry{
			Message:  raw.Message,
			Severity: raw.Severity,
		}
		if ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp); err == nil {
			entry.Timestamp = ts
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
