package listing

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cppla/postboard/models"
)

func makePosts(n int) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, models.Post{ID: i, UserID: (i-1)%10 + 1, Title: fmt.Sprintf("post number %d", i)})
	}
	return posts
}

func TestVisiblePageScenario(t *testing.T) {
	posts := []models.Post{
		{ID: 1, UserID: 1, Title: "Hello World"},
		{ID: 2, UserID: 2, Title: "Another"},
	}
	got := VisiblePage(posts, "hello", AllAuthors(), 1, 12)
	if len(got.Items) != 1 || got.Items[0].ID != 1 {
		t.Fatalf("items = %+v, want only post 1", got.Items)
	}
	if got.TotalPages != 1 {
		t.Fatalf("total pages = %d, want 1", got.TotalPages)
	}
}

func TestVisiblePageSearchIsSubset(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Title: "Go Concurrency"},
		{ID: 2, Title: "concurrency in practice"},
		{ID: 3, Title: "Testing"},
		{ID: 4, Title: "CONCURRENT maps"},
	}
	for _, term := range []string{"", "concurr", "CONCURRENCY", "zzz", "t"} {
		page := VisiblePage(posts, term, AllAuthors(), 1, 100)
		for _, p := range page.Items {
			if !strings.Contains(strings.ToLower(p.Title), strings.ToLower(term)) {
				t.Fatalf("term %q matched %q", term, p.Title)
			}
		}
	}
	if got := VisiblePage(posts, "concurrency", AllAuthors(), 1, 100); got.Total != 2 {
		t.Fatalf("case-insensitive match total = %d, want 2", got.Total)
	}
}

func TestVisiblePageAuthorFilter(t *testing.T) {
	posts := makePosts(100)
	page := VisiblePage(posts, "", ByAuthor(3), 1, 12)
	if page.Total != 10 {
		t.Fatalf("total = %d, want 10", page.Total)
	}
	for _, p := range page.Items {
		if p.UserID != 3 {
			t.Fatalf("post %d has user %d", p.ID, p.UserID)
		}
	}
}

func TestVisiblePageTotals(t *testing.T) {
	cases := []struct {
		n, size, want int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
		{100, 12, 9},
	}
	for _, tc := range cases {
		got := VisiblePage(makePosts(tc.n), "", AllAuthors(), 1, tc.size)
		if got.TotalPages != tc.want {
			t.Fatalf("n=%d size=%d: total pages = %d, want %d", tc.n, tc.size, got.TotalPages, tc.want)
		}
	}
}

func TestVisiblePageSlicing(t *testing.T) {
	posts := makePosts(25)

	last := VisiblePage(posts, "", AllAuthors(), 3, 12)
	if len(last.Items) != 1 || last.Items[0].ID != 25 {
		t.Fatalf("last page = %+v", last.Items)
	}
	second := VisiblePage(posts, "", AllAuthors(), 2, 12)
	if len(second.Items) != 12 || second.Items[0].ID != 13 {
		t.Fatalf("second page starts at %d with %d items", second.Items[0].ID, len(second.Items))
	}

	for _, page := range []int{0, -1, 4, 1000, math.MaxInt, math.MaxInt/12 + 1} {
		got := VisiblePage(posts, "", AllAuthors(), page, 12)
		if got.Items == nil || len(got.Items) != 0 {
			t.Fatalf("page %d: want empty non-nil slice, got %v", page, got.Items)
		}
		if got.TotalPages != 3 {
			t.Fatalf("page %d: total pages = %d", page, got.TotalPages)
		}
	}
}

func TestVisiblePageDefaultSize(t *testing.T) {
	got := VisiblePage(makePosts(30), "", AllAuthors(), 1, 0)
	if got.PageSize != DefaultPageSize || len(got.Items) != DefaultPageSize {
		t.Fatalf("page size = %d, items = %d", got.PageSize, len(got.Items))
	}
}

func TestVisiblePageDoesNotMutateInput(t *testing.T) {
	posts := makePosts(5)
	before := append([]models.Post(nil), posts...)
	_ = VisiblePage(posts, "3", ByAuthor(3), 1, 2)
	for i := range posts {
		if posts[i] != before[i] {
			t.Fatalf("input changed at %d", i)
		}
	}
}

func TestParseAuthorFilter(t *testing.T) {
	cases := []struct {
		in      string
		wantAll bool
		wantID  int
		wantErr bool
	}{
		{"All", true, 0, false},
		{"all", true, 0, false},
		{"", true, 0, false},
		{"7", false, 7, false},
		{" 3 ", false, 3, false},
		{"abc", true, 0, true},
	}
	for _, tc := range cases {
		f, err := ParseAuthorFilter(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: err = %v", tc.in, err)
		}
		if f.IsAll() != tc.wantAll {
			t.Fatalf("%q: IsAll = %v", tc.in, f.IsAll())
		}
		if id, ok := f.UserID(); ok && id != tc.wantID {
			t.Fatalf("%q: id = %d", tc.in, id)
		}
	}
	if s := ByAuthor(4).String(); s != "4" {
		t.Fatalf("String() = %q", s)
	}
	if s := AllAuthors().String(); s != "All" {
		t.Fatalf("String() = %q", s)
	}
}
