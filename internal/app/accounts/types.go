package accounts

import "github.com/scc-freight/freight-api/internal/domain"

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type RegisterInput struct {
	Name     string
	Email    string
	Password string

	// Role is optional; empty defaults to carrier.
	Role string
}

// LoginResult carries the bearer token alongside the authenticated user.
type LoginResult struct {
	Token string
	User  domain.User
}

type UpdateProfileInput struct {
	// Name is optional and cannot be null.
	Name Optional[string]

	CompanyName   Optional[string]
	ContactNumber Optional[string]
	Address       Optional[string]
	Bio           Optional[string]
}
