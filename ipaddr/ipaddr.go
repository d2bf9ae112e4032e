// Package ipaddr parses and manipulates the IPv4 and IPv6 literals that
// describe a 6in4 tunnel: endpoint addresses, the client address and the
// routed prefix.
package ipaddr

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// Sentinel errors
var (
	ErrInvalidIPv4   = errors.New("ipaddr: invalid IPv4 address")
	ErrInvalidIPv6   = errors.New("ipaddr: invalid IPv6 address")
	ErrInvalidPrefix = errors.New("ipaddr: invalid prefix length")
)

// Address is a single IPv4 or IPv6 address.
type Address struct {
	ip netip.Addr
}

// Parse4 parses a dotted-quad IPv4 literal. IPv4-mapped IPv6 forms such as
// ::ffff:192.0.2.1 are IPv6 literals and are rejected.
func Parse4(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidIPv4, s)
	}
	return Address{ip: ip}, nil
}

// Parse6 parses any IPv6 text form, including IPv4-mapped and zoned ones.
func Parse6(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is6() {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidIPv6, s)
	}
	return Address{ip: ip}, nil
}

// Is6 reports whether a is an IPv6 address.
func (a Address) Is6() bool { return a.ip.Is6() }

// String returns the canonical (compressed) textual form.
func (a Address) String() string { return a.ip.String() }

// Expanded returns the fully expanded form. IPv4 addresses are unchanged.
func (a Address) Expanded() string {
	if a.ip.Is4() {
		return a.ip.String()
	}
	return a.ip.StringExpanded()
}

// Offset adds u to an IPv6 address (mod 2^128). IPv4 addresses are returned
// unchanged.
func (a Address) Offset(u uint64) Address {
	if !a.ip.Is6() {
		return a
	}
	b := a.ip.As16()
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(b[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	lo2 := lo + u
	if lo2 < lo {
		hi++
	}
	for i := 7; i >= 0; i-- {
		b[i] = byte(hi)
		hi >>= 8
	}
	for i := 15; i >= 8; i-- {
		b[i] = byte(lo2)
		lo2 >>= 8
	}
	return Address{ip: netip.AddrFrom16(b).WithZone(a.ip.Zone())}
}

// Prefix is an IPv6 network given by an address and a prefix length. The
// address is kept as supplied; Network returns the masked base.
type Prefix struct {
	addr Address
	bits int
}

// NewPrefix builds a prefix from an IPv6 address and a length in [0,128].
func NewPrefix(a Address, bits int) (Prefix, error) {
	if !a.Is6() || bits < 0 || bits > 128 {
		return Prefix{}, ErrInvalidPrefix
	}
	return Prefix{addr: a, bits: bits}, nil
}

// ParseBlock parses a block suffix such as "/48" into its length.
func ParseBlock(block string) (int, error) {
	if !strings.HasPrefix(block, "/") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrefix, block)
	}
	n, err := strconv.Atoi(block[1:])
	if err != nil || n < 0 || n > 128 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrefix, block)
	}
	return n, nil
}

// Bits returns the prefix length.
func (p Prefix) Bits() int { return p.bits }

// Network returns the base address of the prefix.
func (p Prefix) Network() Address {
	np, _ := p.addr.ip.WithZone("").Prefix(p.bits)
	return Address{ip: np.Addr()}
}

// String renders the prefix as network/bits.
func (p Prefix) String() string { return fmt.Sprintf("%s/%d", p.Network(), p.bits) }

// Contains reports whether a lies inside p.
func (p Prefix) Contains(a Address) bool {
	np, err := p.addr.ip.WithZone("").Prefix(p.bits)
	if err != nil {
		return false
	}
	return np.Contains(a.ip.WithZone(""))
}
