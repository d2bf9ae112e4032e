package cli

import (
	"github.com/spf13/cobra"

	"github.com/zlobste/he-tunnel/internal/system"
	"github.com/zlobste/he-tunnel/internal/tunnel"
	"github.com/zlobste/he-tunnel/ipaddr"
)

// netlinker is replaced in tests.
var netlinker = system.DefaultNetlinker

var validateCmd = &cobra.Command{
	Use:   "validate <server IPv4> <client IPv6> <local IPv4> <routed prefix>",
	Short: "Validate and normalize tunnel details without changing the host",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := tunnel.Validate(args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		prefix, err := p.RoutedPrefix()
		if err != nil {
			return err
		}
		src, err := p.ProbeSource(cfg.Probe.SourceOffset)
		if err != nil {
			return err
		}
		client, _ := ipaddr.Parse6(p.Client)
		out := map[string]any{
			"endpoint":        p.Endpoint,
			"client":          p.Client,
			"client_expanded": client.Expanded(),
			"local":           p.Local,
			"routed":          p.Routed,
			"block":           p.Block,
			"routed_network":  prefix.String(),
			"probe_source":    src.String(),
		}
		return render(out)
	},
}

var unitCmd = &cobra.Command{
	Use:   "unit <server IPv4> <client IPv6> <local IPv4> <routed prefix>",
	Short: "Print the systemd unit for the given tunnel details",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := tunnel.Validate(args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		p.IPPath, _ = cmd.Flags().GetString("ip-path")
		return tunnel.RenderUnit(cmd.OutOrStdout(), p, cfg.UnitOptions())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the tunnel interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := system.InspectLink(netlinker, cfg.Unit.Interface)
		if err != nil {
			return err
		}
		if format == outHuman {
			out := map[string]any{
				"name":   st.Name,
				"exists": st.Exists,
			}
			if st.Exists {
				out["up"] = st.Up
				out["oper_state"] = st.OperState
				out["mtu"] = st.MTU
				out["remote"] = st.Remote
				out["local"] = st.Local
				out["addresses"] = st.Addresses
			}
			return render(out)
		}
		return render(st)
	},
}

func init() {
	unitCmd.Flags().String("ip-path", "/sbin/ip", "path of the ip tool written into the unit")
}
