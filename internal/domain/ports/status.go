package ports

// StatusReporter shows a short human-readable run status.
type StatusReporter interface {
	SetStatus(text string)
}
