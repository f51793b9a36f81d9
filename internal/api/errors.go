package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// FieldError содержит сообщения валидации для одного поля.
type FieldError struct {
	Field    string
	Messages []string
}

// APIError описывает ответ API с кодом вне диапазона 2xx.
type APIError struct {
	Status int
	Detail string
	// Fields сохраняет порядок полей из тела ответа.
	Fields []FieldError
	Body   []byte
	// RetryAfter заполняется для ответа 429 с заголовком Retry-After в секундах.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, http.StatusText(e.Status))
}

// Message возвращает detail, а при его отсутствии первое сообщение валидации поля.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.FirstFieldMessage()
}

// FirstFieldMessage возвращает первое сообщение валидации в порядке полей ответа.
func (e *APIError) FirstFieldMessage() string {
	for _, f := range e.Fields {
		for _, m := range f.Messages {
			if m != "" {
				return m
			}
		}
	}
	return ""
}

func newAPIError(status int, header http.Header, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}
	if status == http.StatusTooManyRequests {
		if v := header.Get("Retry-After"); v != "" {
			if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
				e.RetryAfter = time.Duration(seconds) * time.Second
			}
		}
	}
	parseErrorBody(e, body)
	return e
}

// parseErrorBody разбирает тело вида {"detail": "...", "email": ["..."]}.
// Тело другой формы оставляет Detail и Fields пустыми.
func parseErrorBody(e *APIError, body []byte) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return
		}
		key, ok := keyTok.(string)
		if !ok {
			return
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return
		}

		messages := decodeMessages(raw)
		if key == "detail" {
			if len(messages) > 0 {
				e.Detail = messages[0]
			}
			continue
		}
		if len(messages) > 0 {
			e.Fields = append(e.Fields, FieldError{Field: key, Messages: messages})
		}
	}
}

func decodeMessages(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}
