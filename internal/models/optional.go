package models

// Optional отличает "поле не передано" от "поле передано с нулевым значением".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// AccountPatch частичное обновление учетной записи.
// Каждое поле применяется независимо, только если оно передано.
type AccountPatch struct {
	Labels   Optional[string]      // Labels сырая строка меток, разделенных ";"
	Type     Optional[AccountType] // Type новый тип записи
	Login    Optional[string]      // Login новый логин
	Password Optional[string]      // Password игнорируется, если запись не LOCAL
}

// IsEmpty reports whether no field is supplied.
func (p AccountPatch) IsEmpty() bool {
	return !p.Labels.Set && !p.Type.Set && !p.Login.Set && !p.Password.Set
}
