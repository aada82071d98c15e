package shared

import (
	"fmt"
	"strings"
)

// FactoryType is the closed set of factory kinds a recipe can be bound to
type FactoryType string

const (
	FactoryTypeWorkshop FactoryType = "WORKSHOP"
	FactoryTypeFoundry  FactoryType = "FOUNDRY"
	FactoryTypeRefinery FactoryType = "REFINERY"
	FactoryTypeAssembly FactoryType = "ASSEMBLY"
)

// AllFactoryTypes returns every valid factory type in declaration order
func AllFactoryTypes() []FactoryType {
	return []FactoryType{
		FactoryTypeWorkshop,
		FactoryTypeFoundry,
		FactoryTypeRefinery,
		FactoryTypeAssembly,
	}
}

// ParseFactoryType parses a factory type case-insensitively
func ParseFactoryType(s string) (FactoryType, error) {
	t := FactoryType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown factory type: %q", s)
	}
	return t, nil
}

// IsValid reports whether the type is one of the known variants
func (t FactoryType) IsValid() bool {
	switch t {
	case FactoryTypeWorkshop, FactoryTypeFoundry, FactoryTypeRefinery, FactoryTypeAssembly:
		return true
	default:
		return false
	}
}

func (t FactoryType) String() string {
	return string(t)
}
