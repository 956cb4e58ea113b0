package parking

import (
	"fmt"
	"strings"
)

// Policy decides which slot kinds accept which vehicle kinds. EV slots only
// ever take electric vehicles; the policies differ in whether electric
// vehicles may also fall back to regular slots.
type Policy int

const (
	// PolicyStrict keeps each vehicle kind to its own slot kind.
	PolicyStrict Policy = iota
	// PolicyPermissive lets electric vehicles use regular slots too.
	PolicyPermissive
)

func (p Policy) String() string {
	if p == PolicyPermissive {
		return "permissive"
	}
	return "strict"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "permissive":
		return PolicyPermissive, nil
	default:
		return PolicyStrict, fmt.Errorf("unknown parking policy %q", s)
	}
}

func (p Policy) Accepts(kind SlotKind, vehicle *Vehicle) bool {
	switch kind {
	case EVSlot:
		return vehicle.IsElectric()
	case RegularSlot:
		return !vehicle.IsElectric() || p == PolicyPermissive
	default:
		return false
	}
}
