package models

import "strings"

// AccountType тип учетной записи.
type AccountType string

const (
	// AccountTypeLocal учетная запись с локальной парой логин/пароль
	AccountTypeLocal AccountType = "LOCAL"
	// AccountTypeDirectory учетная запись, аутентифицируемая внешним каталогом (LDAP).
	// Пароль такой записи всегда nil.
	AccountTypeDirectory AccountType = "LDAP"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == AccountTypeLocal || t == AccountTypeDirectory
}

// ParseAccountType converts user input to an AccountType.
// Accepts the wire values and the "directory" alias, case-insensitive.
func ParseAccountType(s string) (AccountType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOCAL":
		return AccountTypeLocal, true
	case "LDAP", "DIRECTORY":
		return AccountTypeDirectory, true
	}
	return "", false
}

// Label метка, прикрепленная к учетной записи.
type Label struct {
	Text string `json:"text"`
}

// Account представляет учетную запись: локальную (логин/пароль)
// или внешнюю (каталог). Формат JSON совпадает с хранимым блобом.
type Account struct {
	Password *string     `json:"password"` // Password nil для AccountTypeDirectory
	ID       string      `json:"id"`       // ID неизменяемый уникальный идентификатор
	Type     AccountType `json:"type"`     // Type LOCAL или LDAP
	Login    string      `json:"login"`    // Login хранится как есть, без обрезки
	Labels   []Label     `json:"labels"`   // Labels порядок и дубликаты сохраняются
}

// Clone создает глубокую копию учетной записи
func (a *Account) Clone() *Account {
	clone := &Account{
		ID:     a.ID,
		Type:   a.Type,
		Login:  a.Login,
		Labels: make([]Label, len(a.Labels)),
	}
	copy(clone.Labels, a.Labels)

	if a.Password != nil {
		password := *a.Password
		clone.Password = &password
	}

	return clone
}
