package models

import "time"

// Post is a feed entry. Deleted posts are kept and filtered out of reads.
type Post struct {
	ID        string
	AuthorID  string
	Body      string
	MediaURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}
