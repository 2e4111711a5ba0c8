package repository

import "time"

// nullableString returns SQL NULL for an empty string.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
