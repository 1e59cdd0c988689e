package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired возвращается, когда access token невалиден и обновить
// его не удалось (refresh token отклонен сервером). Токены при этом уже
// удалены из хранилища; вызывающий слой должен отправить пользователя
// на повторную аутентификацию — сам клиент никуда не "навигирует".
var ErrSessionExpired = errors.New("session expired, re-authentication required")

// NetworkError означает, что HTTP-ответ не был получен вовсе:
// обрыв соединения, таймаут, сбой DNS. Только такие ошибки являются
// кандидатами на постановку мутации в offline-очередь.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError означает полученный от сервера статус >= 400.
// Это application-level ошибка: она никогда не ставится в очередь
// и не маскируется оптимистичным результатом.
type HTTPError struct {
	Message string // человекочитаемое сообщение из detail/error/field_errors
	Body    []byte // сырое тело ответа
	Status  int
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsNetworkError reports whether err is classified as a network-level
// failure (no HTTP response received).
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsHTTPError returns the HTTPError if err carries one.
func IsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsValidationError reports whether err is an HTTP 400 response.
func IsValidationError(err error) bool {
	httpErr, ok := IsHTTPError(err)
	return ok && httpErr.Status == http.StatusBadRequest
}
