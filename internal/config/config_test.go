package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlobste/he-tunnel/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "he-tunnel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/etc/systemd/system/he-tunnel.service", cfg.UnitPath())
	assert.Equal(t, uint64(0x420), cfg.Probe.SourceOffset)
	assert.False(t, cfg.Tunnel.Complete())
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
tunnel:
  endpoint: 192.0.2.1
  client: 2001:db8::2/64
  local: 198.51.100.5
  routed: 2001:db8:abcd::/48
unit:
  mtu: 1472
probe:
  skip: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Tunnel.Complete())
	assert.Equal(t, "2001:db8::2/64", cfg.Tunnel.Client)
	assert.Equal(t, 1472, cfg.Unit.MTU)
	assert.Equal(t, 255, cfg.Unit.TTL)
	assert.Equal(t, "he-ipv6", cfg.Unit.Interface)
	assert.True(t, cfg.Probe.Skip)
	assert.Equal(t, 4, cfg.Probe.Count)
	assert.Equal(t, "/etc/sysctl.conf", cfg.Sysctl.File)

	opts := cfg.UnitOptions()
	assert.Equal(t, 1472, opts.MTU)
	assert.Equal(t, "he-ipv6", opts.Interface)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.GetKind(err))

	_, err = Load(writeConfig(t, "unit: [not, a, map"))
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.GetKind(err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty unit name", func(c *Config) { c.Unit.Name = "" }},
		{"empty unit dir", func(c *Config) { c.Unit.Dir = "" }},
		{"long interface", func(c *Config) { c.Unit.Interface = "he-ipv6-tunnel-0" }},
		{"small mtu", func(c *Config) { c.Unit.MTU = 1000 }},
		{"zero ttl", func(c *Config) { c.Unit.TTL = 0 }},
		{"big ttl", func(c *Config) { c.Unit.TTL = 256 }},
		{"zero count", func(c *Config) { c.Probe.Count = 0 }},
		{"no probe host", func(c *Config) { c.Probe.Host = "" }},
		{"no sysctl file", func(c *Config) { c.Sysctl.File = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.GetKind(err))
		})
	}

	cfg := Default()
	cfg.Probe.Host = ""
	cfg.Probe.Skip = true
	assert.NoError(t, cfg.Validate())
}
