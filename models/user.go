package models

// UnknownAuthor is shown when a post's userId matches no fetched user.
const UnknownAuthor = "Unknown Author"

// User is a read-only author record from the remote API.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// FindUser returns the user with the given id.
func FindUser(users []User, id int) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// AuthorName resolves a display name for userID, degrading to UnknownAuthor.
func AuthorName(users []User, userID int) string {
	if u, ok := FindUser(users, userID); ok && u.Name != "" {
		return u.Name
	}
	return UnknownAuthor
}
