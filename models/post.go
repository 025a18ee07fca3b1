package models

// Post is a blog-style post as served by the remote API.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// NewPost is the payload sent when creating a post. The id is assigned remotely.
type NewPost struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Draft holds the raw form input for a post that has not been submitted yet.
// UserID stays a string until validation parses it.
type Draft struct {
	Title  string `json:"title" form:"title"`
	Body   string `json:"body" form:"body"`
	UserID string `json:"userId" form:"userId"`
}

// IsZero reports whether every field of the draft is empty.
func (d Draft) IsZero() bool {
	return d.Title == "" && d.Body == "" && d.UserID == ""
}
