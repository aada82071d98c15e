package billing

import "fmt"

// ErrAlreadyPaid indicates a payment on a settled invoice
type ErrAlreadyPaid struct {
	InvoiceID string
}

func (e *ErrAlreadyPaid) Error() string {
	return fmt.Sprintf("invoice %s is already paid", e.InvoiceID)
}
