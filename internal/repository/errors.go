package repository

import "errors"

// ErrJournalDisabled is returned by the nil-safe journal methods when
// no database was configured.  Callers treat it as a soft condition:
// the operation itself already succeeded, only its audit record is
// skipped.
var ErrJournalDisabled = errors.New("operation journal disabled")
