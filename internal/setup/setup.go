// Package setup runs the end-to-end configuration of a Hurricane Electric
// tunnel on the local host.
package setup

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/zlobste/he-tunnel/internal/config"
	"github.com/zlobste/he-tunnel/internal/errors"
	"github.com/zlobste/he-tunnel/internal/probe"
	"github.com/zlobste/he-tunnel/internal/system"
	"github.com/zlobste/he-tunnel/internal/tunnel"
	"github.com/zlobste/he-tunnel/internal/ui"
)

// Host is the set of system steps the installer drives.
type Host interface {
	CheckEnvironment(goos string) error
	EnsurePrivileges(ctx context.Context) error
	LocateIP(ctx context.Context) (string, error)
	InstallUnit(ctx context.Context, p tunnel.Params, opts tunnel.UnitOptions, workDir, unitDir, unitName string) error
	EnableUnit(ctx context.Context, unit string) error
	EnableNonLocalBind(ctx context.Context, sysctlFile string) error
}

var _ Host = (*system.Host)(nil)

// Outcome reports the advisory steps of a finished run.
type Outcome struct {
	Params   tunnel.Params
	Bound    bool
	Probed   bool
	Verified bool
}

// Installer wires the collaborators of one setup run.
type Installer struct {
	Config   config.Config
	Host     Host
	Prompter ui.Prompter
	Prober   probe.Prober
	Log      logrus.FieldLogger
	Out      io.Writer
	Err      io.Writer
	GOOS     string
	WorkDir  string
}

// Run performs the setup. Environment, permission, tool lookup, validation
// and unit installation failures abort the run; the non-local bind and the
// connectivity probe only produce warnings.
func (in *Installer) Run(ctx context.Context) (Outcome, error) {
	var out Outcome
	cfg := in.Config

	if err := in.Host.CheckEnvironment(in.GOOS); err != nil {
		return out, err
	}

	if cfg.DryRun {
		in.Log.Info("Dry run, skipping privilege check")
	} else if err := in.Host.EnsurePrivileges(ctx); err != nil {
		return out, err
	}

	ipPath, err := in.Host.LocateIP(ctx)
	if err != nil {
		return out, err
	}
	in.Log.WithField("path", ipPath).Debug("Located ip tool")

	params, err := in.collect(ctx)
	if err != nil {
		return out, err
	}
	params.IPPath = ipPath
	out.Params = params

	in.Log.WithFields(logrus.Fields{
		"unit": cfg.Unit.Name,
		"path": cfg.UnitPath(),
	}).Info("Generating service file")
	if err := in.Host.InstallUnit(ctx, params, cfg.UnitOptions(), in.WorkDir, cfg.Unit.Dir, cfg.Unit.Name); err != nil {
		return out, err
	}

	in.Log.WithField("unit", cfg.Unit.Name).Info("Enabling and starting the tunnel service")
	if err := in.Host.EnableUnit(ctx, cfg.Unit.Name); err != nil {
		return out, err
	}
	in.Log.WithField("unit", cfg.Unit.Name).Info("Tunnel service started")

	if err := in.Host.EnableNonLocalBind(ctx, cfg.Sysctl.File); err != nil {
		in.Log.WithError(err).Warn("Non-local bind failed")
		ui.Warn(in.Err, ui.NoBindMessage)
		return out, nil
	}
	out.Bound = true

	if cfg.Probe.Skip || cfg.DryRun {
		in.Log.Info("Skipping connectivity probe")
		return out, nil
	}

	src, err := params.ProbeSource(cfg.Probe.SourceOffset)
	if err != nil {
		return out, errors.Wrap(err, errors.KindValidation, "probe source")
	}
	in.Log.Info("Validating tunnel settings")
	out.Probed = true
	if err := probe.Verify(ctx, in.Prober, in.Log, cfg.Probe.Host, cfg.Probe.Count, src.String()); err != nil {
		ui.Warn(in.Err, ui.ProbeFailedMessage)
		return out, nil
	}
	out.Verified = true
	ui.Success(in.Out, ui.SuccessMessage)
	return out, nil
}

// collect takes the four inputs from configuration, prompting for them when
// any is missing, and validates them.
func (in *Installer) collect(ctx context.Context) (tunnel.Params, error) {
	raw := in.Config.Tunnel
	if !raw.Complete() {
		if in.Prompter == nil {
			return tunnel.Params{}, errors.New(errors.KindConfig, "tunnel details missing and no prompt available")
		}
		var err error
		raw, err = in.Prompter.Prompt(ctx, raw)
		if err != nil {
			return tunnel.Params{}, errors.Wrap(err, errors.KindConfig, "read tunnel details")
		}
	}

	params, err := tunnel.Validate(raw.Endpoint, raw.Client, raw.Local, raw.Routed)
	if err != nil {
		var fe *tunnel.FieldError
		if errors.As(err, &fe) {
			in.Log.WithField("field", string(fe.Field)).Debug("Validation failed")
		}
		return tunnel.Params{}, fmt.Errorf("invalid tunnel details: %w", err)
	}
	return params, nil
}
