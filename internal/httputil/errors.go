package httputil

import "errors"

var (
	ErrInvalidBody      = errors.New("the request body could not be parsed, please check it for syntax errors")
	ErrRequestBodyEmpty = errors.New("the request body must not be empty")
)
