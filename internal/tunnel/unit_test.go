package tunnel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams(t *testing.T) Params {
	t.Helper()
	p, err := Validate(goodEndpoint, goodClient, goodLocal, goodRouted)
	require.NoError(t, err)
	p.IPPath = "/usr/sbin/ip"
	return p
}

func TestRenderUnit(t *testing.T) {
	unit, err := UnitString(validParams(t), DefaultUnitOptions())
	require.NoError(t, err)

	expected := []string{
		"[Unit]",
		"Description=HurricaneElectric Tunnel",
		"ExecStart=/usr/sbin/ip tunnel add he-ipv6 mode sit remote 192.0.2.1 local 198.51.100.5 ttl 255",
		"ExecStart=/usr/sbin/ip link set he-ipv6 up mtu 1480",
		"ExecStart=/usr/sbin/ip addr add 2001:db8::2/64 dev he-ipv6",
		"ExecStart=/usr/sbin/ip -6 route add ::/0 dev he-ipv6",
		"ExecStart=/usr/sbin/ip -6 route replace local 2001:db8:abcd::/48 dev he-ipv6",
		"ExecStop=/usr/sbin/ip -6 route del ::/0 dev he-ipv6",
		"ExecStop=/usr/sbin/ip link set he-ipv6 down",
		"ExecStop=/usr/sbin/ip tunnel del he-ipv6",
		"WantedBy=multi-user.target",
	}
	lines := strings.Split(unit, "\n")
	for _, want := range expected {
		assert.Contains(t, lines, want)
	}
	assert.Len(t, filterPrefix(lines, "ExecStart="), 5)
	assert.Len(t, filterPrefix(lines, "ExecStop="), 3)
}

func TestRenderUnitOptions(t *testing.T) {
	unit, err := UnitString(validParams(t), UnitOptions{Interface: "he0", MTU: 1472, TTL: 64})
	require.NoError(t, err)
	assert.Contains(t, unit, "tunnel add he0 mode sit remote 192.0.2.1 local 198.51.100.5 ttl 64\n")
	assert.Contains(t, unit, "link set he0 up mtu 1472\n")
	assert.NotContains(t, unit, "he-ipv6")
}

func TestRenderUnitZeroOptionsUseDefaults(t *testing.T) {
	withDefaults, err := UnitString(validParams(t), DefaultUnitOptions())
	require.NoError(t, err)
	zero, err := UnitString(validParams(t), UnitOptions{})
	require.NoError(t, err)
	assert.Equal(t, withDefaults, zero)
}

func TestRenderUnitRequiresIPPath(t *testing.T) {
	p := validParams(t)
	p.IPPath = ""
	_, err := UnitString(p, DefaultUnitOptions())
	assert.Error(t, err)
}

func filterPrefix(lines []string, prefix string) []string {
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}
