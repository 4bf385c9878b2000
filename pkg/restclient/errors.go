package restclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
)

// StatusDetails is attached to errors produced from a backend reply.
type StatusDetails struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// classifyStatus maps a non-2xx reply onto the error taxonomy: 404 is not
// found, remaining 4xx are validation failures, everything else is upstream.
func classifyStatus(status int, body []byte) *pkgerrors.Error {
	message := backendMessage(body)
	details := StatusDetails{Status: status, Message: message}
	summary := fmt.Sprintf("backend responded %d", status)
	if message != "" {
		summary = fmt.Sprintf("%s: %s", summary, message)
	}

	switch {
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, summary).WithDetails(details)
	case status >= 400 && status < 500:
		return pkgerrors.New(pkgerrors.CodeValidation, summary).WithDetails(details)
	default:
		return pkgerrors.New(pkgerrors.CodeUpstream, summary).WithDetails(details)
	}
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	typed := pkgerrors.As(err)
	if typed == nil {
		return 0
	}
	if details, ok := typed.Details().(StatusDetails); ok {
		return details.Status
	}
	return 0
}

// maxMessageRunes bounds a raw backend body echoed into an error message.
const maxMessageRunes = 200

func backendMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var envelope struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch msg := envelope.Message.(type) {
		case string:
			return msg
		case []any:
			parts := make([]string, 0, len(msg))
			for _, item := range msg {
				parts = append(parts, fmt.Sprint(item))
			}
			return strings.Join(parts, "; ")
		}
		return envelope.Error
	}
	if runes := []rune(trimmed); len(runes) > maxMessageRunes {
		trimmed = string(runes[:maxMessageRunes])
	}
	return trimmed
}
