package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/zlobste/he-tunnel/internal/config"
)

// Prompter asks the operator for tunnel details. Values already set in
// the argument are offered as defaults.
type Prompter interface {
	Prompt(ctx context.Context, in config.TunnelConfig) (config.TunnelConfig, error)
}

// FormPrompter collects the four inputs with a huh form.
type FormPrompter struct {
	In  io.Reader
	Out io.Writer
	// Accessible switches huh to plain line prompts, for dumb terminals
	// and piped input.
	Accessible bool
}

func (p FormPrompter) Prompt(ctx context.Context, in config.TunnelConfig) (config.TunnelConfig, error) {
	out := in
	fields := []huh.Field{
		huh.NewInput().
			Title(`HE Server IPv4 Address (1)`).
			Placeholder("192.0.2.1").
			Value(&out.Endpoint),
		huh.NewInput().
			Title(`HE Client IPv6 Address (2)`).
			Placeholder("2001:db8:1f0a::2/64").
			Value(&out.Client),
		huh.NewInput().
			Title(`Client Address (3)`).
			Placeholder("198.51.100.5").
			Value(&out.Local),
		huh.NewInput().
			Title(`Routed Address including the /48 or /64 (4)`).
			Placeholder("2001:db8:abcd::/48").
			Value(&out.Routed),
	}
	if p.Accessible {
		w := p.Out
		if w == nil {
			w = os.Stdout
		}
		fmt.Fprintln(w, DetailsMessage)
	} else {
		note := huh.NewNote().Title("HE tunnel details").Description(DetailsMessage)
		fields = append([]huh.Field{note}, fields...)
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(huh.ThemeBase16()).
		WithAccessible(p.Accessible)
	if p.In != nil {
		form = form.WithInput(p.In)
	}
	if p.Out != nil {
		form = form.WithOutput(p.Out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		return in, err
	}
	return withDefaults(Trim(out), in), nil
}

// withDefaults keeps the values of def for every answer left blank.
func withDefaults(got, def config.TunnelConfig) config.TunnelConfig {
	keep := func(v *string, d string) {
		if *v == "" {
			*v = strings.TrimSpace(d)
		}
	}
	keep(&got.Endpoint, def.Endpoint)
	keep(&got.Client, def.Client)
	keep(&got.Local, def.Local)
	keep(&got.Routed, def.Routed)
	return got
}
// Trim strips surrounding whitespace left over from console input.
func Trim(in config.TunnelConfig) config.TunnelConfig {
	return config.TunnelConfig{
		Endpoint: strings.TrimSpace(in.Endpoint),
		Client:   strings.TrimSpace(in.Client),
		Local:    strings.TrimSpace(in.Local),
		Routed:   strings.TrimSpace(in.Routed),
	}
}
