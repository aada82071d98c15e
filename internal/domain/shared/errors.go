package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// NotFoundError indicates that a factory, recipe, resource, invoice,
// employee or listing id did not resolve
type NotFoundError struct {
	*DomainError
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(fmt.Sprintf("%s not found: %s", entity, id)),
		Entity:      entity,
		ID:          id,
	}
}

// InsufficientFundsError indicates the economy service refused a withdrawal
type InsufficientFundsError struct {
	*DomainError
	PlayerID PlayerID
	Amount   float64
	Cause    error
}

func NewInsufficientFundsError(playerID PlayerID, amount float64, cause error) *InsufficientFundsError {
	msg := fmt.Sprintf("insufficient funds: player %s cannot pay %.2f", playerID, amount)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &InsufficientFundsError{
		DomainError: NewDomainError(msg),
		PlayerID:    playerID,
		Amount:      amount,
		Cause:       cause,
	}
}

func (e *InsufficientFundsError) Unwrap() error {
	return e.Cause
}

// InvalidAmountError indicates a non-positive quantity or negative price
type InvalidAmountError struct {
	*DomainError
	Field string
	Value float64
}

func NewInvalidAmountError(field string, value float64) *InvalidAmountError {
	return &InvalidAmountError{
		DomainError: NewDomainError(fmt.Sprintf("invalid %s: %v", field, value)),
		Field:       field,
		Value:       value,
	}
}

// ValidationError reports an invalid field on entity construction
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
