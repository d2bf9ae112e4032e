// Package probe checks IPv6 reachability through the tunnel with ICMPv6
// echo requests.
package probe

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/sirupsen/logrus"
)

// Options configures one probe.
type Options struct {
	Count int
	// Source, when set, is used as the source address of the requests.
	Source string
}

// Stats summarizes a finished probe.
type Stats struct {
	Target   string
	Source   string
	Sent     int
	Received int
	AvgRtt   time.Duration
}

// Prober sends echo requests to a target.
type Prober interface {
	Ping(ctx context.Context, target string, opts Options) (Stats, error)
}

// ICMPProber uses raw ICMPv6 sockets and therefore needs root.
type ICMPProber struct {
	Interval time.Duration
}

func (p ICMPProber) Ping(ctx context.Context, target string, opts Options) (Stats, error) {
	pinger := probing.New(target)
	pinger.SetNetwork("ip6")
	if err := pinger.Resolve(); err != nil {
		return Stats{Target: target}, fmt.Errorf("resolve %s over IPv6: %w", target, err)
	}

	pinger.Count = opts.Count
	pinger.Source = opts.Source
	if p.Interval > 0 {
		pinger.Interval = p.Interval
	}
	pinger.Timeout = time.Duration(opts.Count)*pinger.Interval + 5*time.Second
	pinger.SetPrivileged(true)

	if err := pinger.RunWithContext(ctx); err != nil {
		return Stats{Target: target, Source: opts.Source}, fmt.Errorf("ping %s: %w", target, err)
	}

	st := pinger.Statistics()
	stats := Stats{
		Target:   target,
		Source:   opts.Source,
		Sent:     st.PacketsSent,
		Received: st.PacketsRecv,
		AvgRtt:   st.AvgRtt,
	}
	if stats.Received == 0 {
		return stats, fmt.Errorf("ping %s: no replies (%d sent)", target, stats.Sent)
	}
	return stats, nil
}

// Verify probes host twice: once with the kernel's default source and once
// from source inside the routed prefix. All probes run; the first failure
// is returned.
func Verify(ctx context.Context, p Prober, log logrus.FieldLogger, host string, count int, source string) error {
	var firstErr error
	for _, opts := range []Options{
		{Count: count},
		{Count: count, Source: source},
	} {
		st, err := p.Ping(ctx, host, opts)
		entry := log.WithFields(logrus.Fields{
			"target":   host,
			"source":   opts.Source,
			"sent":     st.Sent,
			"received": st.Received,
		})
		if err != nil {
			entry.WithError(err).Warn("Probe failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		entry.WithField("avg_rtt", st.AvgRtt).Info("Probe succeeded")
	}
	return firstErr
}
