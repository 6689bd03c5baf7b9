// krb/errors.go
package krb

import "errors"

// ErrMalformedContainer is the sentinel every loader failure wraps: bad
// magic, version mismatch on the major, truncated reads, out-of-range
// offsets or string indices, or a declared count that overflows what the
// file actually holds. errors.Is(err, ErrMalformedContainer) lets a
// caller branch on kind without parsing the message.
var ErrMalformedContainer = errors.New("krb: malformed container")
