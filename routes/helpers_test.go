package routes

import (
	"net/http"
	"net/http/httptest"

	"github.com/gofiber/fiber/v2"
)

func httptestRequest(method, path, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	return req
}
