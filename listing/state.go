package listing

import "github.com/cppla/postboard/models"

// ViewState is the list view's input state. Values are never mutated in place;
// transitions go through Reduce.
type ViewState struct {
	Search string
	Author AuthorFilter
	Page   int
}

// InitialState is what a freshly mounted list view starts from.
func InitialState() ViewState {
	return ViewState{Author: AllAuthors(), Page: 1}
}

// Action is a state transition for the list view.
type Action interface {
	apply(ViewState) ViewState
}

// SetSearch replaces the search term.
type SetSearch struct{ Term string }

// SetAuthor replaces the author filter.
type SetAuthor struct{ Filter AuthorFilter }

// GoToPage moves to a page. Pages below 1 clamp to 1.
type GoToPage struct{ Page int }

func (a SetSearch) apply(s ViewState) ViewState {
	if a.Term == s.Search {
		return s
	}
	s.Search = a.Term
	s.Page = 1
	return s
}

func (a SetAuthor) apply(s ViewState) ViewState {
	if a.Filter == s.Author {
		return s
	}
	s.Author = a.Filter
	s.Page = 1
	return s
}

func (a GoToPage) apply(s ViewState) ViewState {
	if a.Page < 1 {
		a.Page = 1
	}
	s.Page = a.Page
	return s
}

// Reduce applies actions in order. A change of search term or author always
// resets the page to 1.
func Reduce(s ViewState, actions ...Action) ViewState {
	for _, a := range actions {
		if a == nil {
			continue
		}
		s = a.apply(s)
	}
	return s
}

// Visible computes the page for this state.
func (s ViewState) Visible(posts []models.Post, pageSize int) Page {
	return VisiblePage(posts, s.Search, s.Author, s.Page, pageSize)
}
