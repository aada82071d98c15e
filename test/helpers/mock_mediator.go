package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/factorycraft/factory-economy/internal/application/mediator"
)

// MockMediator records every request it receives. Responses come from the
// send function when one is set, otherwise every request succeeds with nil.
type MockMediator struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, request mediator.Request) (mediator.Response, error)
	callLog  []string
}

func NewMockMediator() *MockMediator {
	return &MockMediator{}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, fmt.Sprintf("%T", request))
	fn := m.sendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, request)
	}
	return nil, nil
}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request mediator.Request) (mediator.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// GetCallLog returns the request types received, in order
func (m *MockMediator) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.callLog...)
}

// CallCount counts received requests of the given type name, e.g. "*commands.TickFactoriesCommand"
func (m *MockMediator) CallCount(typeName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.callLog {
		if call == typeName {
			n++
		}
	}
	return n
}

// Register implements the Mediator interface (no-op for tests)
func (m *MockMediator) Register(requestType reflect.Type, handler mediator.RequestHandler) error {
	return nil
}

// RegisterMiddleware implements the Mediator interface (no-op for tests)
func (m *MockMediator) RegisterMiddleware(middleware mediator.Middleware) {}

var _ mediator.Mediator = (*MockMediator)(nil)
