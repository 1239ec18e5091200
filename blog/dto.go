package blog

// CreateBlogRequest carries a complete new post. Every field is required;
// the image arrives as a base64 data URI or an already hosted URL.
type CreateBlogRequest struct {
	Title            string `json:"title" validate:"required" example:"Shipping v2"`
	ShortDescription string `json:"shortDescription" validate:"required" example:"What changed and why"`
	Description      string `json:"description" validate:"required"`
	Image            string `json:"image" validate:"required" example:"data:image/png;base64,iVBOR..."`
}

// UpdateBlogRequest is a partial update: absent fields keep their stored
// value, so a nil pointer and an empty string mean different things.
type UpdateBlogRequest struct {
	BlogID           string  `json:"blogId" validate:"required"`
	Title            *string `json:"title,omitempty"`
	ShortDescription *string `json:"shortDescription,omitempty"`
	Description      *string `json:"description,omitempty"`
	Image            *string `json:"image,omitempty"`
}

// CommentRequest carries the text of a new comment. The text is stored as
// submitted.
type CommentRequest struct {
	Text string `json:"text"`
}
