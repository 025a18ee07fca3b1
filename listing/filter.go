// Package listing derives the visible page of posts from the full collection,
// a search term, an author filter and a page number.
package listing

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cppla/postboard/models"
)

// DefaultPageSize is the number of posts shown per page.
const DefaultPageSize = 12

// ErrInvalidAuthor is returned by ParseAuthorFilter for non-numeric ids.
var ErrInvalidAuthor = errors.New("listing: invalid author filter")

// AuthorFilter selects either all authors or a single user id.
// The zero value matches all authors.
type AuthorFilter struct {
	userID int
	set    bool
}

// AllAuthors matches every post.
func AllAuthors() AuthorFilter { return AuthorFilter{} }

// ByAuthor matches posts written by userID.
func ByAuthor(userID int) AuthorFilter { return AuthorFilter{userID: userID, set: true} }

// ParseAuthorFilter accepts "All", "" or a decimal user id.
func ParseAuthorFilter(s string) (AuthorFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllAuthors(), nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return AllAuthors(), ErrInvalidAuthor
	}
	return ByAuthor(id), nil
}

// IsAll reports whether the filter matches every author.
func (f AuthorFilter) IsAll() bool { return !f.set }

// UserID returns the selected user id and false for All.
func (f AuthorFilter) UserID() (int, bool) { return f.userID, f.set }

// String renders the filter the way the author select expects it.
func (f AuthorFilter) String() string {
	if !f.set {
		return "All"
	}
	return strconv.Itoa(f.userID)
}

// Match reports whether post passes the author filter.
func (f AuthorFilter) Match(post models.Post) bool {
	return !f.set || post.UserID == f.userID
}

// Page is one page of filtered posts.
type Page struct {
	Items      []models.Post `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// Empty reports whether the filter matched nothing at all.
func (p Page) Empty() bool { return p.Total == 0 }

// Filter returns the posts whose title contains search (case-insensitive) and
// whose author passes the filter. The input slice is not modified.
func Filter(posts []models.Post, search string, author AuthorFilter) []models.Post {
	needle := strings.ToLower(search)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !author.Match(p) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TotalPages is ceil(total/pageSize), zero for an empty set.
func TotalPages(total, pageSize int) int {
	pageSize = normalizeSize(pageSize)
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// VisiblePage filters posts and slices out the requested 1-based page.
// Out-of-range pages yield no items.
func VisiblePage(posts []models.Post, search string, author AuthorFilter, page, pageSize int) Page {
	pageSize = normalizeSize(pageSize)
	filtered := Filter(posts, search, author)

	res := Page{
		Items:      []models.Post{},
		Page:       page,
		PageSize:   pageSize,
		Total:      len(filtered),
		TotalPages: TotalPages(len(filtered), pageSize),
	}
	// compare page numbers before multiplying so huge pages cannot overflow
	if page < 1 || page-1 >= res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	res.Items = filtered[start:end]
	return res
}

func normalizeSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	return pageSize
}
