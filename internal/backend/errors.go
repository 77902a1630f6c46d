package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized — бэкенд ответил 401, сессия не передана или истекла.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrCircuitOpen — предохранитель открыт, запрос даже не отправлялся.
	ErrCircuitOpen = errors.New("backend: circuit open")
)

// StatusError — любой не-2xx ответ кроме 401.
// Message берется из тела {"error": "..."}, если бэкенд его прислал.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: request failed with status %d", e.Op, e.Code)
}
