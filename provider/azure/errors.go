package azure

import (
	"net/http"

	"github.com/Azure/go-autorest/autorest"
	"github.com/pkg/errors"
)

// isNotFound reports whether the management API rejected the request because
// the resource does not exist.
func isNotFound(err error) bool {
	var det autorest.DetailedError
	if !errors.As(err, &det) {
		return false
	}
	code, ok := det.StatusCode.(int)
	return ok && code == http.StatusNotFound
}
