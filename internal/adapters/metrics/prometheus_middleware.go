package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/factorycraft/factory-economy/internal/application/mediator"
)

// PrometheusMiddleware times every mediator request and counts its outcome.
// Requests are labelled by bare type name ("BuyFactoryCommand") and failures
// by the innermost error type ("ErrNotOwner"), so wrapping with fmt.Errorf
// in a handler does not hide the domain error.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := typeName(request)
		done := collector.begin(name)
		defer done()

		start := time.Now()
		response, err := next(ctx, request)

		kind := ""
		if err != nil {
			kind = errorKind(err)
		}
		collector.RecordCommandExecution(name, time.Since(start).Seconds(), kind)
		return response, err
	}
}

// errorKind names the innermost error of a wrap chain
func errorKind(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return typeName(err)
		}
		err = inner
	}
}

// typeName returns the bare type name of v, e.g. "*factory.ErrNotOwner" -> "ErrNotOwner"
func typeName(v interface{}) string {
	if v == nil {
		return "Unknown"
	}
	fullName := strings.TrimPrefix(reflect.TypeOf(v).String(), "*")
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
