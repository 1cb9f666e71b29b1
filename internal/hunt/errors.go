package hunt

import "errors"

// Recoverable conditions signalled by the progression engine. The processor
// converts both into player-facing replies; neither ever escapes the core.
var (
	ErrSessionNotFound = errors.New("no active session for this phone number")
	ErrClueNotFound    = errors.New("no clue found for current session")
)
