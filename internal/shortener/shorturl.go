package shortener

import "time"

// Code represents a short URL code.
type Code string

// Link maps a short code to the normalized URL it was issued for.
type Link struct {
	ID          int64
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
}
