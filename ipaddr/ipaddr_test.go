package ipaddr

import (
	"errors"
	"testing"
)

func TestParse4(t *testing.T) {
	addr, err := Parse4("192.0.2.1")
	if err != nil {
		t.Fatal(err)
	}
	if addr.String() != "192.0.2.1" {
		t.Fatalf("unexpected: %s", addr.String())
	}
	if addr.Is6() {
		t.Fatal("expected IPv4")
	}
	for _, in := range []string{"2001:db8::1", "::ffff:192.0.2.1", "example.com", "192.0.2", "192.0.2.01", "", " 192.0.2.1"} {
		if _, err := Parse4(in); !errors.Is(err, ErrInvalidIPv4) {
			t.Fatalf("%q: expected ErrInvalidIPv4, got %v", in, err)
		}
	}
}

func TestParse6(t *testing.T) {
	addr, err := Parse6("2001:db8::1")
	if err != nil {
		t.Fatal(err)
	}
	if addr.Expanded() != "2001:0db8:0000:0000:0000:0000:0000:0001" {
		t.Fatalf("expanded mismatch: %s", addr.Expanded())
	}
	if _, err := Parse6("::ffff:192.0.2.1"); err != nil {
		t.Fatalf("IPv4-mapped should be IPv6: %v", err)
	}
	for _, in := range []string{"192.0.2.1", "not-an-ip", "2001:db8::1/64", "2001:db8:::1", ""} {
		if _, err := Parse6(in); !errors.Is(err, ErrInvalidIPv6) {
			t.Fatalf("%q: expected ErrInvalidIPv6, got %v", in, err)
		}
	}
}

func TestOffset(t *testing.T) {
	addr, _ := Parse6("2001:db8:abcd::")
	if got := addr.Offset(0x420).String(); got != "2001:db8:abcd::420" {
		t.Fatalf("unexpected offset: %s", got)
	}
	top, _ := Parse6("::ffff:ffff:ffff:ffff")
	if got := top.Offset(1).String(); got != "0:0:0:1::" {
		t.Fatalf("carry failed: %s", got)
	}
	v4, _ := Parse4("192.0.2.1")
	if v4.Offset(5).String() != "192.0.2.1" {
		t.Fatal("IPv4 offset should be a no-op")
	}
}

func TestPrefix(t *testing.T) {
	base, _ := Parse6("2001:db8:abcd::1")
	bits, err := ParseBlock("/48")
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPrefix(base, bits)
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "2001:db8:abcd::/48" {
		t.Fatalf("unexpected prefix: %s", p)
	}
	if !p.Contains(base.Offset(0x420)) {
		t.Fatal("expected containment")
	}
	other, _ := Parse6("2001:db8:abce::1")
	if p.Contains(other) {
		t.Fatal("unexpected containment")
	}
}

func TestPrefixErrors(t *testing.T) {
	for _, in := range []string{"48", "/", "/abc", "/129", "/-1"} {
		if _, err := ParseBlock(in); !errors.Is(err, ErrInvalidPrefix) {
			t.Fatalf("%q: expected ErrInvalidPrefix, got %v", in, err)
		}
	}
	v4, _ := Parse4("192.0.2.1")
	if _, err := NewPrefix(v4, 24); err == nil {
		t.Fatal("expected error for IPv4 base")
	}
}

func FuzzParse6(f *testing.F) {
	seeds := []string{"::1", "2001:db8::1", "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, in string) {
		addr, err := Parse6(in)
		if err != nil {
			return
		}
		p2, err := Parse6(addr.String())
		if err != nil {
			t.Fatalf("re-parse failed: %v", err)
		}
		if p2.String() != addr.String() {
			t.Fatalf("roundtrip mismatch %s != %s", p2, addr)
		}
	})
}
