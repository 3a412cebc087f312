package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/crimsonvanitas/brew/pkg/errors"
)

type fakeRunner struct {
	out   string
	err   error
	calls int
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls++
	return []byte(f.out), f.err
}

func TestRuntimeLibDir(t *testing.T) {
	tc := New(Options{Prefix: "/home/linuxbrew/.linuxbrew"})
	assert.Equal(t, "/home/linuxbrew/.linuxbrew/opt/gcc/lib/gcc/current", tc.RuntimeLibDir())
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"11\n", 11, true},
		{"11.4.0\n", 11, true},
		{"12.3", 12, true},
		{"", 0, false},
		{"gcc: command not found", 0, false},
		{"0", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMajor(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		simulate bool
		want     []string
	}{
		{name: "older host compiler", runner: &fakeRunner{out: "11.4.0\n"}, want: []string{"gcc"}},
		{name: "same host compiler", runner: &fakeRunner{out: "12\n"}, want: []string{}},
		{name: "newer host compiler", runner: &fakeRunner{out: "13.2.0\n"}, want: []string{}},
		{name: "no host compiler", runner: &fakeRunner{err: errors.New("not found")}, want: []string{"gcc"}},
		{name: "simulating macOS", runner: &fakeRunner{out: "9\n"}, simulate: true, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := New(Options{
				Prefix:           "/opt/brew",
				PreferredVersion: 12,
				SimulateMacOS:    tt.simulate,
				Runner:           tt.runner,
			})

			sel, err := tc.Select(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.BottleDependencies)
			assert.Equal(t, "/opt/brew/opt/gcc/lib/gcc/current", sel.RuntimeLibDir)
			assert.Equal(t, 1, tt.runner.calls, "the host compiler is probed exactly once")
		})
	}
}

func TestSelectInvalidPreferredVersion(t *testing.T) {
	_, err := New(Options{Runner: &fakeRunner{}}).Select(context.Background())
	assert.True(t, relerrors.IsErrorCode(err, relerrors.ErrToolchain))
}
