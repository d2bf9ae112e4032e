package system

import (
	"net"

	"github.com/vishvananda/netlink"

	"github.com/zlobste/he-tunnel/internal/errors"
)

// Netlinker is the subset of netlink used to inspect the tunnel link.
type Netlinker interface {
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
}

type defaultNetlinker struct{}

func (defaultNetlinker) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (defaultNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

// DefaultNetlinker talks to the kernel over rtnetlink.
var DefaultNetlinker Netlinker = defaultNetlinker{}

// LinkStatus describes the tunnel interface as the kernel sees it.
type LinkStatus struct {
	Name      string   `json:"name" yaml:"name"`
	Exists    bool     `json:"exists" yaml:"exists"`
	Type      string   `json:"type,omitempty" yaml:"type,omitempty"`
	Up        bool     `json:"up" yaml:"up"`
	OperState string   `json:"oper_state,omitempty" yaml:"oper_state,omitempty"`
	MTU       int      `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	Local     string   `json:"local,omitempty" yaml:"local,omitempty"`
	Remote    string   `json:"remote,omitempty" yaml:"remote,omitempty"`
	TTL       int      `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Addresses []string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
}

// InspectLink reports the state of the named link. A missing link is not
// an error; Exists is false.
func InspectLink(nl Netlinker, name string) (LinkStatus, error) {
	st := LinkStatus{Name: name}

	link, err := nl.LinkByName(name)
	if err != nil {
		var nf netlink.LinkNotFoundError
		if errors.As(err, &nf) {
			return st, nil
		}
		return st, errors.Wrapf(err, errors.KindCommand, "look up link %s", name)
	}

	attrs := link.Attrs()
	st.Exists = true
	st.Type = link.Type()
	st.Up = attrs.Flags&net.FlagUp != 0
	st.OperState = attrs.OperState.String()
	st.MTU = attrs.MTU

	switch l := link.(type) {
	case *netlink.Sittun:
		st.Local, st.Remote, st.TTL = ipString(l.Local), ipString(l.Remote), int(l.Ttl)
	case *netlink.Iptun:
		st.Local, st.Remote, st.TTL = ipString(l.Local), ipString(l.Remote), int(l.Ttl)
	}

	addrs, err := nl.AddrList(link, netlink.FAMILY_V6)
	if err != nil {
		return st, errors.Wrapf(err, errors.KindCommand, "list addresses of %s", name)
	}
	for _, a := range addrs {
		if a.IPNet != nil {
			st.Addresses = append(st.Addresses, a.IPNet.String())
		}
	}
	return st, nil
}

func ipString(ip net.IP) string {
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
