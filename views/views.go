// Package views holds the server rendered pages.
package views

import (
	"embed"
	"html/template"
	"strconv"

	"github.com/cppla/postboard/listing"
	"github.com/cppla/postboard/live"
	"github.com/cppla/postboard/models"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page template.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}

var funcs = template.FuncMap{
	"pageURL": PageURL,
}

// PageURL links to page n of the list with the current filters kept.
func PageURL(search string, author listing.AuthorFilter, n int) string {
	u := "/?page=" + strconv.Itoa(n)
	if search != "" {
		u += "&q=" + template.URLQueryEscaper(search)
	}
	if !author.IsAll() {
		u += "&author=" + author.String()
	}
	return u
}

// Layout is the chrome shared by every page.
type Layout struct {
	Brand string
	Title string
	Toast *live.Toast
}

// PostRow is a post with its author resolved.
type PostRow struct {
	Post   models.Post
	Author string
}

// ListPage renders "/".
type ListPage struct {
	Layout
	Search string
	Author listing.AuthorFilter
	Users  []models.User
	Rows   []PostRow
	Pager  listing.Pager
}

// SelectedAuthor reports whether id is the active author filter.
func (p ListPage) SelectedAuthor(id int) bool {
	uid, ok := p.Author.UserID()
	return ok && uid == id
}

// DetailPage renders "/post/:id".
type DetailPage struct {
	Layout
	Found  bool
	Post   models.Post
	Author string
}

// CreatePage renders "/create".
type CreatePage struct {
	Layout
	Draft          models.Draft
	Users          []models.User
	FieldErrors    map[string]string
	APIError       string
	SubmitDisabled bool
}

// SelectedUser reports whether id is the author picked in the draft.
func (p CreatePage) SelectedUser(id int) bool {
	return p.Draft.UserID == strconv.Itoa(id)
}
