// Package errs implements the per-instance error-string capture used by the
// codec and container types: the latest failure on a RecordCodec, Writer, or
// Reader is readable via its LastError method until a subsequent failing call
// overwrites it.
package errs

import "fmt"

// Channel holds the last error message recorded on a codec or container
// instance. Its zero value reports an empty string, matching GetLastError's
// "" default in the source this is grounded on.
type Channel struct {
	msg string
}

// Set records msg as the latest error.
func (c *Channel) Set(msg string) { c.msg = msg }

// Setf records a formatted message as the latest error.
func (c *Channel) Setf(format string, args ...any) { c.msg = fmt.Sprintf(format, args...) }

// SetPrefixed records err prefixed with the given upstream-collaborator tag,
// e.g. "lzma: " or "fpzip: ", matching the source's convention of tagging
// errors by which external component raised them.
func (c *Channel) SetPrefixed(prefix string, err error) { c.msg = prefix + err.Error() }

// Clear empties the recorded message.
func (c *Channel) Clear() { c.msg = "" }

// String returns the recorded message, or "" if none has been set.
func (c *Channel) String() string { return c.msg }

// Snapshot captures the current message so it can be Restore()d later. Used
// by the scoped-IO guard to make sure a body's failure survives a finalizer
// that also fails.
func (c *Channel) Snapshot() string { return c.msg }

// Restore re-applies a previously captured Snapshot.
func (c *Channel) Restore(snapshot string) { c.msg = snapshot }
