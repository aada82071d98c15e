package common

import "context"

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx handed to fn join that transaction; fn returning an error
// rolls it back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopTransactor runs fn directly, for repositories without transactional storage
type NoopTransactor struct{}

func (NoopTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
