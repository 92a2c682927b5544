package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/amx/internal/shared"
)

// Classify turns a non-2xx response into a [*shared.Error].
//
// A decodable, non-empty Apple Music error envelope always wins and its first entry becomes the primary error.
// Anything else, including malformed JSON and an empty errors list, falls back to the status code.
func Classify(status int, body []byte) *shared.Error {
	var env shared.OriginErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Errors) > 0 {
		return shared.NewOriginAPIError(status, env.Errors)
	}
	return classifyStatus(status, body)
}

func classifyStatus(status int, body []byte) *shared.Error {
	var (
		kind shared.ErrorKind
		msg  string
	)

	switch {
	case status == http.StatusBadRequest:
		kind, msg = shared.KindValidation, "bad request: invalid parameters or request format"
	case status == http.StatusUnauthorized:
		kind, msg = shared.KindNetwork, "unauthorized: invalid or missing authentication token"
	case status == http.StatusForbidden:
		kind, msg = shared.KindNetwork, "forbidden: insufficient permissions"
	case status == http.StatusNotFound:
		kind, msg = shared.KindValidation, "resource not found"
	case status == http.StatusUnprocessableEntity:
		kind, msg = shared.KindValidation, "unprocessable entity: semantic errors in request"
	case status == http.StatusTooManyRequests:
		kind, msg = shared.KindValidation, "rate limit exceeded"
	case status >= 500 && status <= 599:
		kind, msg = shared.KindNetwork, strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("internal server error (%d)", status)
		}
	default:
		return shared.NewUnknownError(status, nil)
	}

	return &shared.Error{Kind: kind, Status: status, Message: msg}
}
