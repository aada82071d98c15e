package factory

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Employee is an NPC worker hired into a factory. Employees draw a wage each
// salary cycle and shorten newly started production tasks.
type Employee struct {
	id      string
	name    string
	wage    float64
	hiredAt time.Time
}

// NewEmployee creates an employee with a generated id
func NewEmployee(name string, wage float64, hiredAt time.Time) (Employee, error) {
	if name == "" {
		return Employee{}, fmt.Errorf("employee name cannot be empty")
	}
	if wage < 0 {
		return Employee{}, fmt.Errorf("employee wage cannot be negative")
	}
	return Employee{id: uuid.New().String(), name: name, wage: wage, hiredAt: hiredAt}, nil
}

// ReconstructEmployee rebuilds an employee from persistence
func ReconstructEmployee(id, name string, wage float64, hiredAt time.Time) Employee {
	return Employee{id: id, name: name, wage: wage, hiredAt: hiredAt}
}

func (e Employee) ID() string         { return e.id }
func (e Employee) Name() string       { return e.name }
func (e Employee) Wage() float64      { return e.wage }
func (e Employee) HiredAt() time.Time { return e.hiredAt }

// WorkforceBonus describes how employees speed up production
type WorkforceBonus struct {
	PerEmployee float64 // fraction of duration saved per employee
	Max         float64 // cap on the total fraction saved
}

// Fraction returns the duration reduction for n employees
func (b WorkforceBonus) Fraction(n int) float64 {
	f := b.PerEmployee * float64(n)
	if f > b.Max {
		f = b.Max
	}
	if f < 0 {
		return 0
	}
	return f
}

// Apply shortens a duration for n employees, rounding up and never below one second
func (b WorkforceBonus) Apply(durationSeconds, n int) int {
	d := int(math.Ceil(float64(durationSeconds) * (1 - b.Fraction(n))))
	if d < 1 {
		return 1
	}
	return d
}
