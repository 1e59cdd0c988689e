package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrorResponse представляет тело ошибки Django-style backend.
// Сервер возвращает одно из полей: detail, error или field_errors.
type ErrorResponse struct {
	Detail      string              `json:"detail,omitempty"`
	Error       string              `json:"error,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
}

// Message собирает человекочитаемое сообщение из полей ответа.
// Порядок приоритета: detail, error, field_errors.
func (e *ErrorResponse) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Error != "" {
		return e.Error
	}
	if len(e.FieldErrors) > 0 {
		fields := make([]string, 0, len(e.FieldErrors))
		for field := range e.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.FieldErrors[field], "; ")))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// ParseErrorBody пытается разобрать тело ошибки сервера.
// Возвращает пустую строку, если тело не похоже на известный формат.
func ParseErrorBody(body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	return errResp.Message()
}
