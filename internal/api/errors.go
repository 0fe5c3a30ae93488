package api

import (
	"errors"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

// StatusCode returns the HTTP status of a failed API call, or 0 when err
// is not an HTTP error (transport failure, timeout).
func StatusCode(err error) int {
	var httpErr *ghAPI.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == 401 || code == 403
}
