// Package tunnel validates Hurricane Electric tunnel parameters and renders
// the systemd unit that brings the tunnel up.
package tunnel

import (
	"fmt"
	"strings"

	"github.com/zlobste/he-tunnel/internal/errors"
	"github.com/zlobste/he-tunnel/ipaddr"
)

// Field names a validated tunnel parameter.
type Field string

const (
	FieldEndpoint  Field = "endpoint"
	FieldClient    Field = "client"
	FieldLocal     Field = "local"
	FieldRouted    Field = "routed"
	FieldAddresses Field = "addresses"
)

// Validation failure reasons.
const (
	ReasonEndpoint     = "invalid server IPv4 address"
	ReasonClient       = "invalid client IPv6 address"
	ReasonLocal        = "invalid client address"
	ReasonRoutedSuffix = "missing or unsupported routed-prefix length"
	ReasonRouted       = "invalid routed IPv6 address"
	ReasonDuplicate    = "duplicate address provided — all addresses must be unique"
)

// Routed prefix blocks, in matching order.
const (
	Block48 = "/48"
	Block64 = "/64"
)

const clientSuffix = "/64"

// Params is a normalized tunnel configuration.
type Params struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Client   string `json:"client" yaml:"client"`
	Local    string `json:"local" yaml:"local"`
	Routed   string `json:"routed" yaml:"routed"`
	Block    string `json:"block" yaml:"block"`
	// IPPath is the resolved ip(8) binary, filled in after validation.
	IPPath string `json:"ip_path,omitempty" yaml:"ip_path,omitempty"`
}

// FieldError reports which parameter failed validation and why.
type FieldError struct {
	Field  Field
	Reason string
	Value  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Kind classifies every FieldError as a validation error.
func (e *FieldError) Kind() errors.Kind { return errors.KindValidation }

func fieldErr(f Field, reason, value string) error {
	return &FieldError{Field: f, Reason: reason, Value: value}
}

// Validate checks the four raw operator inputs and returns the normalized
// parameters. Fields are checked in order endpoint, client, local, routed,
// then for duplicates; the first failure is returned.
func Validate(endpoint, client, local, routed string) (Params, error) {
	if _, err := ipaddr.Parse4(endpoint); err != nil {
		return Params{}, fieldErr(FieldEndpoint, ReasonEndpoint, endpoint)
	}

	client = strings.TrimSuffix(client, clientSuffix)
	if _, err := ipaddr.Parse6(client); err != nil {
		return Params{}, fieldErr(FieldClient, ReasonClient, client)
	}

	if _, err := ipaddr.Parse4(local); err != nil {
		return Params{}, fieldErr(FieldLocal, ReasonLocal, local)
	}

	var block string
	switch {
	case strings.HasSuffix(routed, Block48):
		block = Block48
	case strings.HasSuffix(routed, Block64):
		block = Block64
	default:
		return Params{}, fieldErr(FieldRouted, ReasonRoutedSuffix, routed)
	}
	routed = strings.TrimSuffix(routed, block)
	if _, err := ipaddr.Parse6(routed); err != nil {
		return Params{}, fieldErr(FieldRouted, ReasonRouted, routed)
	}

	seen := make(map[string]struct{}, 4)
	for _, v := range []string{endpoint, client, local, routed} {
		if _, dup := seen[v]; dup {
			return Params{}, fieldErr(FieldAddresses, ReasonDuplicate, v)
		}
		seen[v] = struct{}{}
	}

	return Params{
		Endpoint: endpoint,
		Client:   client,
		Local:    local,
		Routed:   routed,
		Block:    block,
	}, nil
}

// RoutedPrefix returns the routed network as an ipaddr.Prefix.
func (p Params) RoutedPrefix() (ipaddr.Prefix, error) {
	addr, err := ipaddr.Parse6(p.Routed)
	if err != nil {
		return ipaddr.Prefix{}, err
	}
	bits, err := ipaddr.ParseBlock(p.Block)
	if err != nil {
		return ipaddr.Prefix{}, err
	}
	return ipaddr.NewPrefix(addr, bits)
}

// ProbeSource returns the address inside the routed prefix used as the
// source of the second connectivity probe. The offset must not leave the
// prefix.
func (p Params) ProbeSource(offset uint64) (ipaddr.Address, error) {
	prefix, err := p.RoutedPrefix()
	if err != nil {
		return ipaddr.Address{}, err
	}
	addr, err := ipaddr.Parse6(p.Routed)
	if err != nil {
		return ipaddr.Address{}, err
	}
	src := addr.Offset(offset)
	if !prefix.Contains(src) {
		return ipaddr.Address{}, fmt.Errorf("probe source %s outside %s", src, prefix)
	}
	return src, nil
}
