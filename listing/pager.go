package listing

// pagerWindow is how many numbered links surround the current page.
const pagerWindow = 5

// PageLink is one entry in the pagination control. Gap entries render as "…".
type PageLink struct {
	Number  int
	Current bool
	Gap     bool
}

// Pager describes the pagination control for a page.
type Pager struct {
	Page       int
	TotalPages int
	Links      []PageLink
	HasPrev    bool
	HasNext    bool
}

// Visible reports whether a pagination control should render at all.
func (p Pager) Visible() bool { return p.TotalPages > 0 }

// Prev is the previous page number.
func (p Pager) Prev() int { return p.Page - 1 }

// Next is the next page number.
func (p Pager) Next() int { return p.Page + 1 }

// NewPager builds the control: a window of up to five numbers around page,
// plus the first and last page separated by gaps when they fall outside it.
func NewPager(page, totalPages int) Pager {
	p := Pager{Page: page, TotalPages: totalPages}
	if totalPages <= 0 {
		return p
	}
	p.HasPrev = page > 1
	p.HasNext = page < totalPages

	// an out-of-range page keeps the window anchored to real pages
	center := page
	if center > totalPages {
		center = totalPages
	}
	start := center - pagerWindow/2
	if start < 1 {
		start = 1
	}
	end := start + pagerWindow - 1
	if end > totalPages {
		end = totalPages
		start = end - pagerWindow + 1
		if start < 1 {
			start = 1
		}
	}

	if start > 1 {
		p.Links = append(p.Links, PageLink{Number: 1, Current: page == 1})
		if start > 2 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
	}
	for n := start; n <= end; n++ {
		p.Links = append(p.Links, PageLink{Number: n, Current: n == page})
	}
	if end < totalPages {
		if end < totalPages-1 {
			p.Links = append(p.Links, PageLink{Gap: true})
		}
		p.Links = append(p.Links, PageLink{Number: totalPages, Current: page == totalPages})
	}
	return p
}
