// Package validation проверяет поля учетной записи до отправки изменений в репозиторий.
// Проверка носит рекомендательный характер: репозиторий ее не вызывает.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Generic field messages
const (
	MsgRequired = "this field is required"
	// MsgTooLong format: maximum length
	MsgTooLong = "maximum length: %d characters"
	// MsgTooShort format: minimum length
	MsgTooShort = "minimum length: %d characters"
	// MsgTypeRequired account type is not chosen
	MsgTypeRequired = "account type is required"
	// MsgTypeUnknown format: account type value
	MsgTypeUnknown = "unknown account type: %q"
)

// FieldRules декларативные ограничения поля.
// Нулевое значение MaxLength/MinLength означает, что правило не задано.
type FieldRules struct {
	Required  bool
	MaxLength int
	MinLength int
}

// Result результат проверки одного поля
type Result struct {
	ErrorMessage string `json:"errorMessage,omitempty"`
	IsValid      bool   `json:"isValid"`
}

func valid() Result {
	return Result{IsValid: true}
}

func invalid(msg string) Result {
	return Result{IsValid: false, ErrorMessage: msg}
}

// ValidateField проверяет value по rules в фиксированном порядке:
// required, затем максимальная длина, затем минимальная.
// Первое нарушенное правило определяет сообщение.
// Длина считается в символах (рунах), а не в байтах.
func ValidateField(value string, rules FieldRules) Result {
	if rules.Required && strings.TrimSpace(value) == "" {
		return invalid(MsgRequired)
	}

	length := utf8.RuneCountInString(value)

	if rules.MaxLength > 0 && length > rules.MaxLength {
		return invalid(fmt.Sprintf(MsgTooLong, rules.MaxLength))
	}

	// Пустое необязательное поле не проверяется на минимальную длину
	if rules.MinLength > 0 && length > 0 && length < rules.MinLength {
		return invalid(fmt.Sprintf(MsgTooShort, rules.MinLength))
	}

	return valid()
}
