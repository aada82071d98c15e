package ratelimit

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/time/rate"

	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/shared"
)

// ErrRateLimited indicates a player issued commands faster than allowed
type ErrRateLimited struct {
	PlayerID shared.PlayerID
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("player %s is sending commands too quickly", e.PlayerID)
}

// PlayerLimiter hands out one token bucket per player
type PlayerLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[shared.PlayerID]*rate.Limiter
}

// NewPlayerLimiter creates a limiter allowing perSecond commands per player with the given burst
func NewPlayerLimiter(perSecond float64, burst int) *PlayerLimiter {
	if burst < 1 {
		burst = 1
	}
	return &PlayerLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[shared.PlayerID]*rate.Limiter),
	}
}

// Allow consumes one token for playerID
func (l *PlayerLimiter) Allow(playerID shared.PlayerID) bool {
	l.mu.Lock()
	lim, ok := l.limiters[playerID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[playerID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// Middleware rejects requests from players that exceeded their rate.
// Requests without a PlayerID field (admin and scheduler commands) pass through.
func Middleware(limiter *PlayerLimiter) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if limiter == nil {
			return next(ctx, request)
		}

		playerID, ok := extractPlayerID(request)
		if ok && !limiter.Allow(playerID) {
			return nil, &ErrRateLimited{PlayerID: playerID}
		}

		return next(ctx, request)
	}
}

var playerIDType = reflect.TypeOf(shared.PlayerID{})

// extractPlayerID uses reflection to read a PlayerID field from the request
func extractPlayerID(request mediator.Request) (shared.PlayerID, bool) {
	v := reflect.ValueOf(request)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return shared.PlayerID{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return shared.PlayerID{}, false
	}

	field := v.FieldByName("PlayerID")
	if !field.IsValid() || field.Type() != playerIDType {
		return shared.PlayerID{}, false
	}

	playerID := field.Interface().(shared.PlayerID)
	if playerID.IsZero() {
		return shared.PlayerID{}, false
	}
	return playerID, true
}
