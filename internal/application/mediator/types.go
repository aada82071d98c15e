package mediator

import (
	"context"
	"fmt"
	"reflect"
)

// Request is a command or query value; its dynamic type selects the handler
type Request interface{}

// Response is whatever the handler returns, usually a pointer to a *Response struct
type Response interface{}

type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps every Send. Rate limiting and command metrics are
// installed this way.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Mediator dispatches factory, billing, marketplace and catalog requests
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
	RegisterMiddleware(middleware Middleware)
}

// ErrNoHandler is returned by Send for a request type nobody registered
type ErrNoHandler struct {
	RequestType reflect.Type
}

func (e *ErrNoHandler) Error() string {
	return fmt.Sprintf("no handler registered for type %s", e.RequestType)
}

// SendAs sends request and asserts the response type.
// Example: resp, err := mediator.SendAs[*commands.BuyFactoryResponse](ctx, m, cmd)
func SendAs[T Response](ctx context.Context, m Mediator, request Request) (T, error) {
	var zero T
	resp, err := m.Send(ctx, request)
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, fmt.Errorf("%T returned unexpected response type %T", request, resp)
	}
	return typed, nil
}
