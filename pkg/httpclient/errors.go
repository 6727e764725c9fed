package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// RESTErrorResponse is the error body emitted by the WordPress REST API, e.g.
// {"code":"rest_no_route","message":"No route was found","data":{"status":404}}.
type RESTErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. 404 maps to NotFound and 400 to InvalidInput; every
// other status means the upstream cannot serve us and maps to Unavailable.
//
// The caller should only invoke this when resp.StatusCode is not 2xx. The
// response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Unavailable(serviceName,
			fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err))
	}

	code, message := "", string(bodyBytes)
	var restErr RESTErrorResponse
	if json.Unmarshal(bodyBytes, &restErr) == nil && restErr.Code != "" {
		code, message = restErr.Code, restErr.Message
	}

	return mapStatus(resp.StatusCode, code, message, serviceName)
}

func mapStatus(status int, code, message, serviceName string) error {
	switch status {
	case http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s: %s", serviceName, message))
	default:
		if code != "" {
			message = code + ": " + message
		}
		return apperrors.Unavailable(serviceName, fmt.Errorf("status %d: %s", status, message))
	}
}
