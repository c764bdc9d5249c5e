// Package sentinel holds the storage-layer error values. Ledger stores wrap
// them with the record they concern; services match them with errors.Is and
// answer with a domain error instead.
package sentinel

import "errors"

// ErrNotFound means no record exists under the requested id.
var ErrNotFound = errors.New("not found")

// ErrConflict means a record with that id is already stored.
var ErrConflict = errors.New("conflict")

// ErrInvalidState means the record exists but the mutation does not apply to
// it any more, for example resolving an anomaly that is no longer open.
var ErrInvalidState = errors.New("invalid state")
