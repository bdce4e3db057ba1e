// Package security provides authorization primitives.
package security

import (
	"fmt"
	"math/bits"
	"strings"
)

// Capability is a single employee feature toggle.
// The set of capabilities is closed: unknown names are rejected at the boundary.
type Capability uint16

const (
	CapSalesCreate Capability = 1 << iota
	CapSalesRead
	CapStockRead
	CapStockReceive
	CapStockTransfer
	CapProductsRead
	CapProductsManage

	capSentinel
)

var capabilityNames = map[Capability]string{
	CapSalesCreate:    "sales:create",
	CapSalesRead:      "sales:read",
	CapStockRead:      "stock:read",
	CapStockReceive:   "stock:receive",
	CapStockTransfer:  "stock:transfer",
	CapProductsRead:   "products:read",
	CapProductsManage: "products:manage",
}

// String returns the wire name of the capability.
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", uint16(c))
}

// ParseCapability resolves a wire name to a Capability.
func ParseCapability(name string) (Capability, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range capabilityNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// CapabilitySet is a bitmask of enabled capabilities.
type CapabilitySet uint16

// NewCapabilitySet builds a set from individual capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	return s.With(caps...)
}

// ParseCapabilities validates every name against the closed enum.
func ParseCapabilities(names []string) (CapabilitySet, error) {
	var s CapabilitySet
	for _, name := range names {
		c, err := ParseCapability(name)
		if err != nil {
			return 0, err
		}
		s = s.With(c)
	}
	return s, nil
}

// AllCapabilities returns the set with every capability enabled.
func AllCapabilities() CapabilitySet {
	return CapabilitySet(capSentinel - 1)
}

// OwnerCapabilities is the default set for store owners.
func OwnerCapabilities() CapabilitySet {
	return AllCapabilities()
}

// CashierCapabilities is the default set for cashiers.
func CashierCapabilities() CapabilitySet {
	return NewCapabilitySet(CapSalesCreate, CapSalesRead, CapProductsRead, CapStockRead)
}

// Has reports whether c is enabled.
func (s CapabilitySet) Has(c Capability) bool {
	return c != 0 && CapabilitySet(c)&s == CapabilitySet(c)
}

// With returns a copy of s with caps enabled.
func (s CapabilitySet) With(caps ...Capability) CapabilitySet {
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// Without returns a copy of s with caps disabled.
func (s CapabilitySet) Without(caps ...Capability) CapabilitySet {
	for _, c := range caps {
		s &^= CapabilitySet(c)
	}
	return s
}

// Len returns the number of enabled capabilities.
func (s CapabilitySet) Len() int {
	return bits.OnesCount16(uint16(s & AllCapabilities()))
}

// Names returns enabled capability names in declaration order.
func (s CapabilitySet) Names() []string {
	names := make([]string, 0, s.Len())
	for c := Capability(1); c < capSentinel; c <<= 1 {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return names
}
