// Package config loads the YAML settings of a tunnel setup run and checks
// them before anything touches the host.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zlobste/he-tunnel/internal/errors"
	"github.com/zlobste/he-tunnel/internal/tunnel"
)

// TunnelConfig holds the raw operator inputs. Empty fields are prompted for.
type TunnelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Client   string `yaml:"client"`
	Local    string `yaml:"local"`
	Routed   string `yaml:"routed"`
}

// Complete reports whether all four inputs are present.
func (t TunnelConfig) Complete() bool {
	return t.Endpoint != "" && t.Client != "" && t.Local != "" && t.Routed != ""
}

// UnitConfig names the systemd unit and the interface it brings up.
type UnitConfig struct {
	Name      string `yaml:"name"`
	Dir       string `yaml:"dir"`
	Interface string `yaml:"interface"`
	MTU       int    `yaml:"mtu"`
	TTL       int    `yaml:"ttl"`
}

// ProbeConfig controls the connectivity check run after setup.
type ProbeConfig struct {
	Host         string `yaml:"host"`
	Count        int    `yaml:"count"`
	Skip         bool   `yaml:"skip"`
	SourceOffset uint64 `yaml:"source_offset"`
}

// SysctlConfig points at the file the non-local bind setting is persisted to.
type SysctlConfig struct {
	File string `yaml:"file"`
}

// Config is the full he-tunnel configuration file.
type Config struct {
	Tunnel TunnelConfig `yaml:"tunnel"`
	Unit   UnitConfig   `yaml:"unit"`
	Probe  ProbeConfig  `yaml:"probe"`
	Sysctl SysctlConfig `yaml:"sysctl"`
	DryRun bool         `yaml:"dry_run"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Unit: UnitConfig{
			Name:      tunnel.DefaultUnitName,
			Dir:       "/etc/systemd/system",
			Interface: tunnel.DefaultInterface,
			MTU:       tunnel.DefaultMTU,
			TTL:       tunnel.DefaultTTL,
		},
		Probe: ProbeConfig{
			Host:         "google.com",
			Count:        4,
			SourceOffset: 0x420,
		},
		Sysctl: SysctlConfig{
			File: "/etc/sysctl.conf",
		},
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, errors.KindConfig, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.KindConfig, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks the non-tunnel settings. Tunnel addresses are checked by
// tunnel.Validate once collected.
func (c Config) Validate() error {
	switch {
	case c.Unit.Name == "":
		return errors.New(errors.KindConfig, "unit.name cannot be empty")
	case c.Unit.Dir == "":
		return errors.New(errors.KindConfig, "unit.dir cannot be empty")
	case c.Unit.Interface == "" || len(c.Unit.Interface) > 15:
		return errors.Errorf(errors.KindConfig, "invalid unit.interface %q (1-15 characters)", c.Unit.Interface)
	case c.Unit.MTU < 1280 || c.Unit.MTU > 65535:
		return errors.Errorf(errors.KindConfig, "invalid unit.mtu %d (must be 1280-65535)", c.Unit.MTU)
	case c.Unit.TTL < 1 || c.Unit.TTL > 255:
		return errors.Errorf(errors.KindConfig, "invalid unit.ttl %d (must be 1-255)", c.Unit.TTL)
	case c.Probe.Count < 1:
		return errors.Errorf(errors.KindConfig, "invalid probe.count %d", c.Probe.Count)
	case !c.Probe.Skip && c.Probe.Host == "":
		return errors.New(errors.KindConfig, "probe.host cannot be empty")
	case c.Sysctl.File == "":
		return errors.New(errors.KindConfig, "sysctl.file cannot be empty")
	}
	return nil
}

// UnitOptions returns the rendering options for the tunnel unit.
func (c Config) UnitOptions() tunnel.UnitOptions {
	return tunnel.UnitOptions{
		Interface: c.Unit.Interface,
		MTU:       c.Unit.MTU,
		TTL:       c.Unit.TTL,
	}
}

// UnitPath returns the installed location of the unit file.
func (c Config) UnitPath() string {
	return filepath.Join(c.Unit.Dir, c.Unit.Name)
}
