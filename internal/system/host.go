package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/zlobste/he-tunnel/internal/errors"
	"github.com/zlobste/he-tunnel/internal/tunnel"
)

const (
	sudoPrompt      = "[sudo] password for %u:"
	nonLocalBindKey = "net.ipv6.ip_nonlocal_bind"
	nonLocalBindOn  = nonLocalBindKey + " = 1"
)

// Host performs the privileged steps of a tunnel setup through a Runner.
type Host struct {
	runner  Runner
	log     logrus.FieldLogger
	useSudo bool

	// Geteuid is swapped out in tests.
	Geteuid func() int
}

// NewHost returns a Host that issues commands through r.
func NewHost(r Runner, log logrus.FieldLogger) *Host {
	return &Host{
		runner:  r,
		log:     log,
		Geteuid: unix.Geteuid,
	}
}

// UsesSudo reports whether privileged commands are prefixed with sudo.
func (h *Host) UsesSudo() bool { return h.useSudo }

// run issues a privileged command, prefixed with sudo when not root.
func (h *Host) run(ctx context.Context, cmd Command) (Result, error) {
	if h.useSudo {
		cmd.Args = append([]string{cmd.Name}, cmd.Args...)
		cmd.Name = "sudo"
	}
	return h.runner.Run(ctx, cmd)
}

// CheckEnvironment fails unless goos is linux.
func (h *Host) CheckEnvironment(goos string) error {
	if goos != "linux" {
		return errors.Errorf(errors.KindEnvironment,
			"he-tunnel is only supported on Linux, not %s", goos)
	}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		h.log.WithField("kernel", unix.ByteSliceToString(uts.Release[:])).Debug("Detected kernel")
	}
	return nil
}

// EnsurePrivileges returns immediately when running as root. Otherwise it
// asks sudo to validate the operator's credentials and makes every later
// privileged command go through sudo.
func (h *Host) EnsurePrivileges(ctx context.Context) error {
	if h.Geteuid() == 0 {
		return nil
	}
	h.log.Info("Not running as root, requesting sudo credentials")
	_, err := h.runner.Run(ctx, Command{
		Name:        "sudo",
		Args:        []string{"-v", "-p", sudoPrompt},
		Interactive: true,
	})
	if err != nil {
		return errors.Wrap(err, errors.KindPermission,
			"he-tunnel requires privileged access, try running with sudo")
	}
	h.useSudo = true
	return nil
}

// LocateIP resolves the filesystem path of the ip(8) tool.
func (h *Host) LocateIP(ctx context.Context) (string, error) {
	res, err := h.run(ctx, Command{Name: "which", Args: []string{"ip"}, ReadOnly: true})
	if err != nil {
		return "", errors.Wrap(err, errors.KindToolNotFound, `unable to find the "ip" command location`)
	}
	path := strings.TrimSpace(res.Stdout)
	if path == "" {
		return "", errors.New(errors.KindToolNotFound, `unable to find the "ip" command location`)
	}
	return path, nil
}

// InstallUnit renders the unit into workDir and moves it into unitDir,
// keeping a .bak copy of any unit it replaces.
func (h *Host) InstallUnit(ctx context.Context, p tunnel.Params, opts tunnel.UnitOptions, workDir, unitDir, unitName string) error {
	var buf bytes.Buffer
	if err := tunnel.RenderUnit(&buf, p, opts); err != nil {
		return errors.Wrap(err, errors.KindCommand, "generate service file")
	}
	tmp := filepath.Join(workDir, unitName)
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, errors.KindCommand, "write service file")
	}
	h.log.WithField("path", tmp).Debug("Wrote service file")

	_, err := h.run(ctx, Command{
		Name: "mv",
		Args: []string{"-b", "--suffix=.bak", tmp, unitDir + "/"},
	})
	if err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindCommand, "install service file"), "unit", unitName)
	}
	return nil
}

// EnableUnit reloads systemd, then enables and restarts unit.
func (h *Host) EnableUnit(ctx context.Context, unit string) error {
	steps := [][]string{
		{"daemon-reload"},
		{"enable", unit},
		{"restart", unit},
	}
	for _, args := range steps {
		if _, err := h.run(ctx, Command{Name: "systemctl", Args: args}); err != nil {
			return errors.Attr(errors.Wrapf(err, errors.KindCommand, "systemctl %s", args[0]), "unit", unit)
		}
		h.log.WithField("unit", unit).Debugf("systemctl %s done", args[0])
	}
	return nil
}

// EnableNonLocalBind turns on net.ipv6.ip_nonlocal_bind and appends it to
// sysctlFile unless the file already has it.
func (h *Host) EnableNonLocalBind(ctx context.Context, sysctlFile string) error {
	if _, err := h.run(ctx, Command{Name: "sysctl", Args: []string{"-w", nonLocalBindKey + "=1"}}); err != nil {
		return errors.Wrap(err, errors.KindCommand, "enable non-local bind")
	}

	if hasSetting(sysctlFile, nonLocalBindOn) {
		h.log.WithField("file", sysctlFile).Debug("Non-local bind already persisted")
		return nil
	}
	_, err := h.run(ctx, Command{
		Name:  "tee",
		Args:  []string{"-a", sysctlFile},
		Stdin: nonLocalBindOn + "\n",
	})
	if err != nil {
		return errors.Wrap(err, errors.KindCommand, "persist non-local bind")
	}
	return nil
}

func hasSetting(path, line string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	want := compact(line)
	for _, l := range strings.Split(string(data), "\n") {
		if compact(l) == want {
			return true
		}
	}
	return false
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
