package validation

import (
	"fmt"

	"github.com/iudanet/accountkeeper/internal/labels"
	"github.com/iudanet/accountkeeper/internal/models"
)

// Rules верхние границы длины полей
type Rules struct {
	MaxLabelsLength   int // MaxLabelsLength применяется к сырой строке меток, до разбора
	MaxLoginLength    int
	MaxPasswordLength int
}

// DefaultRules returns the built-in limits
func DefaultRules() Rules {
	return Rules{
		MaxLabelsLength:   50,
		MaxLoginLength:    100,
		MaxPasswordLength: 100,
	}
}

// AccountInput черновик учетной записи в том виде, в каком его ввел пользователь.
// В отличие от models.Account, тип может быть еще не выбран.
type AccountInput struct {
	Type     models.Optional[models.AccountType]
	Labels   string
	Login    string
	Password string
}

// AccountValidation результаты проверки всех полей учетной записи
type AccountValidation struct {
	Labels   Result `json:"labels"`
	Type     Result `json:"type"`
	Login    Result `json:"login"`
	Password Result `json:"password"`
}

// IsValid reports whether every field is valid
func (v AccountValidation) IsValid() bool {
	return v.Labels.IsValid && v.Type.IsValid && v.Login.IsValid && v.Password.IsValid
}

// Validator applies Rules to account fields
type Validator struct {
	rules Rules
}

// NewValidator creates a validator with the given limits
func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// Rules returns the limits the validator applies
func (v *Validator) Rules() Rules {
	return v.rules
}

// ValidateLabels проверяет сырую строку меток (необязательное поле)
func (v *Validator) ValidateLabels(raw string) Result {
	return ValidateField(raw, FieldRules{MaxLength: v.rules.MaxLabelsLength})
}

// ValidateLogin проверяет логин (обязательное поле)
func (v *Validator) ValidateLogin(login string) Result {
	return ValidateField(login, FieldRules{Required: true, MaxLength: v.rules.MaxLoginLength})
}

// ValidatePassword проверяет пароль с учетом типа записи.
// Для AccountTypeDirectory пароль не используется и всегда валиден.
func (v *Validator) ValidatePassword(password string, accountType models.Optional[models.AccountType]) Result {
	if t, ok := accountType.Get(); ok && t == models.AccountTypeDirectory {
		return valid()
	}

	return ValidateField(password, FieldRules{Required: true, MaxLength: v.rules.MaxPasswordLength})
}

// ValidateAccountType проверяет, что тип выбран и известен
func (v *Validator) ValidateAccountType(accountType models.Optional[models.AccountType]) Result {
	t, ok := accountType.Get()
	if !ok || t == "" {
		return invalid(MsgTypeRequired)
	}
	if !t.Valid() {
		return invalid(fmt.Sprintf(MsgTypeUnknown, string(t)))
	}

	return valid()
}

// ValidateAccount проверяет все поля независимо друг от друга
func (v *Validator) ValidateAccount(input AccountInput) AccountValidation {
	return AccountValidation{
		Labels:   v.ValidateLabels(input.Labels),
		Type:     v.ValidateAccountType(input.Type),
		Login:    v.ValidateLogin(input.Login),
		Password: v.ValidatePassword(input.Password, input.Type),
	}
}

// IsValid reports whether every field of result is valid
func (v *Validator) IsValid(result AccountValidation) bool {
	return result.IsValid()
}

// InputFromAccount builds a draft from a stored account, for re-validation
func InputFromAccount(a *models.Account) AccountInput {
	input := AccountInput{
		Type:   models.Some(a.Type),
		Labels: labels.Join(a.Labels),
		Login:  a.Login,
	}
	if a.Password != nil {
		input.Password = *a.Password
	}
	return input
}

// ApplyPatch returns the draft that results from applying patch to input,
// mirroring how the repository applies it. Lets callers validate what they
// are about to submit.
func ApplyPatch(input AccountInput, patch models.AccountPatch) AccountInput {
	if raw, ok := patch.Labels.Get(); ok {
		input.Labels = raw
	}
	if t, ok := patch.Type.Get(); ok {
		input.Type = models.Some(t)
		if t == models.AccountTypeDirectory {
			input.Password = ""
		}
	}
	if login, ok := patch.Login.Get(); ok {
		input.Login = login
	}
	if password, ok := patch.Password.Get(); ok {
		if t, set := input.Type.Get(); set && t == models.AccountTypeLocal {
			input.Password = password
		}
	}
	return input
}
