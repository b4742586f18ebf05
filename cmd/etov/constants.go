package main

// Default limits for CLI commands.
const (
	DefaultHistoryLimit = 20
)

// Valid preview formats.
var validFormats = []string{"json", "csv", "markdown", "notes"}
