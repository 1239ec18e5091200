// Package blog implements the posting surface: blog creation, partial
// updates with ownership checks, deletion, append-only comments, and the
// populated listing the feed renders from.
package blog

import (
	"time"

	"github.com/google/uuid"
)

// Author is the public slice of a user account that listings embed in place
// of the raw user id.
type Author struct {
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

// Comment is one append-only remark on a blog. Comments are never edited or
// removed through the API.
type Comment struct {
	ID        uuid.UUID `json:"_id"`
	BlogID    uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"userId"`
	Author    *Author   `json:"user,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Blog is a single post. Author and Comments are populated only by the
// listing query; point lookups leave them empty.
type Blog struct {
	ID               uuid.UUID `json:"_id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	Description      string    `json:"description"`
	Image            string    `json:"image"`
	UserID           uuid.UUID `json:"userId"`
	Author           *Author   `json:"user,omitempty"`
	Comments         []Comment `json:"comments"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
