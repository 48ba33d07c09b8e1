package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// Invalid renders the error returned by validator.Struct. Anything that is
// not a non-empty ValidationErrors becomes a generic message.
func Invalid(err error) Response {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return ValidationError(errs)
	}

	return Error("invalid request")
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "gt", "gte", "min":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), minValue(err)))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMsgs, ", "),
	}
}

func minValue(err validator.FieldError) string {
	if err.ActualTag() == "gt" {
		return incr(err.Param())
	}

	return err.Param()
}

func incr(param string) string {
	var n int
	if _, err := fmt.Sscan(param, &n); err != nil {
		return param
	}

	return fmt.Sprint(n + 1)
}
