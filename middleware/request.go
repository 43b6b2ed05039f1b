// middleware/request.go
package middleware

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestID tags each request with X-Request-ID, keeping one sent by the caller.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	})
}

// AccessLog writes one line per request, including the request id.
func AccessLog() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "${time} [HTTP] ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		TimeFormat: "2006/01/02 15:04:05",
		Output:     os.Stdout,
	})
}
