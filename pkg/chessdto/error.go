package chessdto

import "fmt"

// APIError is returned for non-2xx responses from the chess server.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("chess api error: status=%d path=%s body=%s", e.Status, e.Path, e.Body)
	}
	return fmt.Sprintf("chess api error: status=%d path=%s", e.Status, e.Path)
}

// Retryable reports whether a later identical request may succeed.
func (e *APIError) Retryable() bool {
	switch e.Status {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
