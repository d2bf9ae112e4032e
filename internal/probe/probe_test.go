package probe

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	calls   []Options
	failSrc map[string]bool
}

func (f *fakeProber) Ping(_ context.Context, target string, opts Options) (Stats, error) {
	f.calls = append(f.calls, opts)
	if f.failSrc[opts.Source] {
		return Stats{Target: target, Sent: opts.Count}, errors.New("no replies")
	}
	return Stats{Target: target, Sent: opts.Count, Received: opts.Count, AvgRtt: time.Millisecond}, nil
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestVerify(t *testing.T) {
	p := &fakeProber{}
	require.NoError(t, Verify(context.Background(), p, quiet(), "google.com", 4, "2001:db8:abcd::420"))
	assert.Equal(t, []Options{
		{Count: 4},
		{Count: 4, Source: "2001:db8:abcd::420"},
	}, p.calls)
}

func TestVerifyRunsAllProbes(t *testing.T) {
	p := &fakeProber{failSrc: map[string]bool{"": true}}
	err := Verify(context.Background(), p, quiet(), "google.com", 2, "2001:db8:abcd::420")
	require.Error(t, err)
	assert.Len(t, p.calls, 2)
}

var _ Prober = ICMPProber{}
