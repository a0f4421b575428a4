package db

// Setting is one row of the key-value settings table shared by the SQL backends.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt int64 // unix milliseconds
}
