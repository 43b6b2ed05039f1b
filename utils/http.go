// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound clients (R2 uploads).
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
