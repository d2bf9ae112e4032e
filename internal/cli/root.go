package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zlobste/he-tunnel/internal/config"
	"github.com/zlobste/he-tunnel/internal/errors"
	"github.com/zlobste/he-tunnel/internal/logger"
	"github.com/zlobste/he-tunnel/internal/probe"
	"github.com/zlobste/he-tunnel/internal/setup"
	"github.com/zlobste/he-tunnel/internal/system"
	"github.com/zlobste/he-tunnel/internal/ui"
)

type outputFormat string

const (
	outHuman outputFormat = "human"
	outJSON  outputFormat = "json"
	outYAML  outputFormat = "yaml"
)

var rootCmd = &cobra.Command{
	Use:   "he-tunnel",
	Short: "Configure a Hurricane Electric IPv6 tunnel",
	Long: `he-tunnel sets up a Hurricane Electric (tunnelbroker.net) 6in4 tunnel on a
Linux host: it validates the tunnel details, installs a systemd unit that
brings the sit interface up, enables IPv6 non-local bind and checks IPv6
connectivity.

Run without arguments for the interactive setup.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runSetup,
}

var (
	format     outputFormat
	configPath string
	logLevel   string
	flagCfg    = config.Default()
	cfg        config.Config
)

// newInstaller builds the installer for a setup run; tests replace it.
var newInstaller = func(cmd *cobra.Command, c config.Config) (*setup.Installer, error) {
	var runner system.Runner = system.NewExecRunner(logger.Logger)
	if c.DryRun {
		runner = &system.DryRunRunner{Next: runner, Out: cmd.OutOrStdout(), Log: logger.Logger}
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &setup.Installer{
		Config:   c,
		Host:     system.NewHost(runner, logger.Logger),
		Prompter: ui.FormPrompter{Accessible: os.Getenv("ACCESSIBLE") != ""},
		Prober:   probe.ICMPProber{},
		Log:      logger.Logger,
		Out:      cmd.OutOrStdout(),
		Err:      cmd.ErrOrStderr(),
		GOOS:     runtime.GOOS,
		WorkDir:  wd,
	}, nil
}

// Execute runs the root command tree and returns the process exit status.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		logger.Logger.WithFields(logrus.Fields(errors.Fields(err))).WithError(err).Error("Command failed")
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP((*string)(&format), "output", "o", string(outHuman), "output format: human|json|yaml")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagCfg.Unit.Interface, "interface", flagCfg.Unit.Interface, "tunnel interface name")
	rootCmd.PersistentFlags().IntVar(&flagCfg.Unit.MTU, "mtu", flagCfg.Unit.MTU, "tunnel interface MTU")
	rootCmd.PersistentFlags().IntVar(&flagCfg.Unit.TTL, "ttl", flagCfg.Unit.TTL, "tunnel TTL")

	f := rootCmd.Flags()
	f.StringVar(&flagCfg.Tunnel.Endpoint, "endpoint", "", "HE server IPv4 address")
	f.StringVar(&flagCfg.Tunnel.Client, "client", "", "HE client IPv6 address")
	f.StringVar(&flagCfg.Tunnel.Local, "local", "", "IPv4 address of this machine as registered with HE")
	f.StringVar(&flagCfg.Tunnel.Routed, "routed", "", "routed IPv6 prefix including /48 or /64")
	f.StringVar(&flagCfg.Unit.Dir, "unit-dir", flagCfg.Unit.Dir, "systemd unit directory")
	f.StringVar(&flagCfg.Probe.Host, "probe-host", flagCfg.Probe.Host, "host pinged to verify the tunnel")
	f.BoolVar(&flagCfg.Probe.Skip, "skip-probe", false, "skip the connectivity probe")
	f.BoolVar(&flagCfg.DryRun, "dry-run", false, "print system commands instead of running them")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadConfig merges the config file, when given, with explicitly set flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := logger.SetLevel(logLevel); err != nil {
		return err
	}

	cfg = config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"endpoint", func() { cfg.Tunnel.Endpoint = flagCfg.Tunnel.Endpoint }},
		{"client", func() { cfg.Tunnel.Client = flagCfg.Tunnel.Client }},
		{"local", func() { cfg.Tunnel.Local = flagCfg.Tunnel.Local }},
		{"routed", func() { cfg.Tunnel.Routed = flagCfg.Tunnel.Routed }},
		{"interface", func() { cfg.Unit.Interface = flagCfg.Unit.Interface }},
		{"unit-dir", func() { cfg.Unit.Dir = flagCfg.Unit.Dir }},
		{"mtu", func() { cfg.Unit.MTU = flagCfg.Unit.MTU }},
		{"ttl", func() { cfg.Unit.TTL = flagCfg.Unit.TTL }},
		{"probe-host", func() { cfg.Probe.Host = flagCfg.Probe.Host }},
		{"skip-probe", func() { cfg.Probe.Skip = flagCfg.Probe.Skip }},
		{"dry-run", func() { cfg.DryRun = flagCfg.DryRun }},
	}
	for _, o := range overrides {
		if changed(o.flag) {
			o.apply()
		}
	}
	return cfg.Validate()
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ui.Banner(cmd.OutOrStdout())
	inst, err := newInstaller(cmd, cfg)
	if err != nil {
		return err
	}
	_, err = inst.Run(cmd.Context())
	return err
}

func render(v any) error {
	w := rootCmd.OutOrStdout()
	switch format {
	case outHuman:
		fmt.Fprintln(w, v)
	case outJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return errors.Errorf(errors.KindConfig, "unknown output format %q", format)
	}
	return nil
}
