package mocks

// StatusReporter records every status it is given.
type StatusReporter struct {
	Statuses []string
}

// SetStatus appends the status.
func (m *StatusReporter) SetStatus(text string) {
	m.Statuses = append(m.Statuses, text)
}

// Last returns the most recent status.
func (m *StatusReporter) Last() string {
	if len(m.Statuses) == 0 {
		return ""
	}
	return m.Statuses[len(m.Statuses)-1]
}
