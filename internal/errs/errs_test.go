package errs

import (
	"errors"
	"testing"
)

func TestChannelDefaultsEmpty(t *testing.T) {
	var c Channel
	if c.String() != "" {
		t.Fatalf("zero value should report empty string, got %q", c.String())
	}
}

func TestSetPrefixed(t *testing.T) {
	var c Channel
	c.SetPrefixed("lzma: ", errors.New("SZ_ERROR_DATA"))
	if c.String() != "lzma: SZ_ERROR_DATA" {
		t.Fatalf("got %q", c.String())
	}
}

func TestSnapshotRestorePreservesFirstFailure(t *testing.T) {
	var c Channel
	c.Set("body failed")
	snap := c.Snapshot()

	c.Set("finalizer failed too")
	c.Restore(snap)

	if c.String() != "body failed" {
		t.Fatalf("got %q, want first failure preserved", c.String())
	}
}
