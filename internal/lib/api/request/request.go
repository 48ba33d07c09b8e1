package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var (
	ErrMissingID = errors.New("id is required")
	ErrInvalidID = errors.New("invalid id format")
)

type paramError struct {
	msg string
	err error
}

func (e *paramError) Error() string { return e.msg }
func (e *paramError) Unwrap() error { return e.err }

// ID reads a positive integer URL parameter. The returned error message
// names the entity, e.g. "event id is required".
func ID(r *http.Request, param, entity string) (int64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, &paramError{msg: fmt.Sprintf("%s id is required", entity), err: ErrMissingID}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &paramError{msg: fmt.Sprintf("invalid %s id format", entity), err: ErrInvalidID}
	}

	return id, nil
}
