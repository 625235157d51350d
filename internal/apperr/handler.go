package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Title  string   `json:"title,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// Response maps err onto a status code and body. Errors it does not recognize
// become an opaque 500.
func Response(err error) (int, ErrorResponse) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		msg := ve.Message
		if ve.Err != nil {
			msg += ": " + ve.Err.Error()
		}
		return http.StatusBadRequest, ErrorResponse{Error: msg, Title: "validation error", Issues: ve.Issues}
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, ErrorResponse{Error: nf.Error(), Title: "not found"}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound, ErrorResponse{Error: "not found", Title: "not found"}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := Response(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Unhandled error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
