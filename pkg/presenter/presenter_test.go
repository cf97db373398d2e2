package presenter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewWithWriters(out, errOut), out, errOut
}

func TestErrorWithContext(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "validating skill")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "validating skill")
	assert.Contains(t, errOut.String(), "boom")
}

func TestErrorWithoutContext(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "")

	assert.Contains(t, errOut.String(), "boom")
	assert.NotContains(t, errOut.String(), ": boom:")
}

func TestQuietSuppressesAllButErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("done")
	p.Warning("careful")
	p.Info("fyi")
	p.Section("Results")
	p.Separator()
	assert.Empty(t, out.String())

	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")
	assert.True(t, p.IsQuiet())
}

func TestMessagesReachOutput(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("exported")
	p.Warning("unresolved reference")
	p.Info("3 tools")
	p.Section("Coverage")

	got := out.String()
	assert.Contains(t, got, "exported")
	assert.Contains(t, got, "unresolved reference")
	assert.Contains(t, got, "3 tools")
	assert.Contains(t, got, "Coverage")
}
