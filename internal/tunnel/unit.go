package tunnel

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Unit defaults.
const (
	DefaultUnitName  = "he-tunnel.service"
	DefaultInterface = "he-ipv6"
	DefaultMTU       = 1480
	DefaultTTL       = 255
)

// UnitOptions controls the interface-level settings of the rendered unit.
type UnitOptions struct {
	Interface string
	MTU       int
	TTL       int
}

// DefaultUnitOptions returns the options used by tunnelbroker.net examples.
func DefaultUnitOptions() UnitOptions {
	return UnitOptions{
		Interface: DefaultInterface,
		MTU:       DefaultMTU,
		TTL:       DefaultTTL,
	}
}

var unitTmpl = template.Must(template.New("unit").Parse(`[Unit]
Description=HurricaneElectric Tunnel
After=network.target

[Service]
Type=oneshot
RemainAfterExit=yes
ExecStart={{.IP}} tunnel add {{.Iface}} mode sit remote {{.Endpoint}} local {{.Local}} ttl {{.TTL}}
ExecStart={{.IP}} link set {{.Iface}} up mtu {{.MTU}}
ExecStart={{.IP}} addr add {{.Client}}/64 dev {{.Iface}}
ExecStart={{.IP}} -6 route add ::/0 dev {{.Iface}}
ExecStart={{.IP}} -6 route replace local {{.Routed}}{{.Block}} dev {{.Iface}}
ExecStop={{.IP}} -6 route del ::/0 dev {{.Iface}}
ExecStop={{.IP}} link set {{.Iface}} down
ExecStop={{.IP}} tunnel del {{.Iface}}

[Install]
WantedBy=multi-user.target
`))

// RenderUnit writes the systemd unit for p to w. p.IPPath must be set.
func RenderUnit(w io.Writer, p Params, opts UnitOptions) error {
	if p.IPPath == "" {
		return fmt.Errorf("render unit: ip path not resolved")
	}
	if opts.Interface == "" {
		opts.Interface = DefaultInterface
	}
	if opts.MTU == 0 {
		opts.MTU = DefaultMTU
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}

	data := struct {
		IP       string
		Iface    string
		Endpoint string
		Client   string
		Local    string
		Routed   string
		Block    string
		MTU      int
		TTL      int
	}{
		IP:       p.IPPath,
		Iface:    opts.Interface,
		Endpoint: p.Endpoint,
		Client:   p.Client,
		Local:    p.Local,
		Routed:   p.Routed,
		Block:    p.Block,
		MTU:      opts.MTU,
		TTL:      opts.TTL,
	}
	return unitTmpl.Execute(w, data)
}

// UnitString renders the unit into a string.
func UnitString(p Params, opts UnitOptions) (string, error) {
	var b strings.Builder
	if err := RenderUnit(&b, p, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}
