// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound integrations (webhooks). Keep the timeout
// short: nothing outbound sits on a request path.
var HTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}
