package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr, prevNoColor := Out, ErrOut, color.NoColor
	Out, ErrOut, color.NoColor = out, errOut, true
	t.Cleanup(func() { Out, ErrOut, color.NoColor = prevOut, prevErr, prevNoColor })
	return out, errOut
}

func TestPrinter(t *testing.T) {
	out, errOut := capture(t)

	Success("migrated %d files", 3)
	Warning("skipped %d files", 1)
	Field("tenant", "user_1")
	err := Error("reindex failed", "ledger is unreadable")

	assert.Equal(t, "✓ migrated 3 files\n! skipped 1 files\n  tenant:          user_1\n", out.String())
	assert.Equal(t, "reindex failed\nledger is unreadable\n", errOut.String())
	assert.EqualError(t, err, "reindex failed")
}
