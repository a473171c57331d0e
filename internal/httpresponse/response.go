package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zouxu09/goban/internal/domain/goban"
	"github.com/zouxu09/goban/internal/domain/sgf"
	goerrors "github.com/zouxu09/goban/internal/errors"
)

type Response[T any] struct {
	Status int `json:"Status"`
	Body   T   `json:"Body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"ErrorDescription"`
}

const INTERNALERRORJSON = "{\"Status\": 500,\"Body\":{\"ErrorDescription\": \"Internal server error\"}}"

const MALFORMEDJSON_errorDesc = "json unmarshalling error"

func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	jsonByte, err := marshalStatusJson(status, body)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonByte)
}

func marshalStatusJson(status int, body any) ([]byte, error) {
	response := Response[any]{
		Status: status,
		Body:   body,
	}
	return json.Marshal(response)
}

// WriteError picks the status code from the error kind. Unknown errors are
// reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		WriteInternalErrorResponse(w)
		return
	}
	WriteResponseWithStatus(w, status, ErrorResponse{ErrorDescription: err.Error()})
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, goerrors.ErrBoardNotFound):
		return http.StatusNotFound
	case errors.Is(err, goerrors.ErrPositionRepeated):
		return http.StatusConflict
	case errors.Is(err, goban.ErrOutOfBounds),
		errors.Is(err, goerrors.ErrInvalidBoardSize),
		errors.Is(err, goerrors.ErrInvalidColor),
		errors.Is(err, goerrors.ErrInvalidOrder),
		errors.Is(err, goerrors.ErrInvalidHash),
		errors.Is(err, sgf.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, goerrors.ErrInternal):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// like http.Error but with a JSON content type
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}

func WriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, text)
}
