package railway

import "fmt"

// APIError represents an error response from the Railway API, either an HTTP
// failure or a GraphQL-level error. Treated as transient by the orchestrator:
// the affected service (or cycle) is skipped, never aborted.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("railway api error (status %d): %s", e.StatusCode, e.Body)
}
