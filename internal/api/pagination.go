package api

import (
	"net/http"
	"net/url"
	"strconv"
)

// Fixed page size for every paginated listing.
const perPage = 10

type (
	// pageLinks and pageMeta mirror the pagination envelope clients
	// already consume: first/last/prev/next links plus counters.
	pageLinks struct {
		First string  `json:"first"`
		Last  string  `json:"last"`
		Prev  *string `json:"prev"`
		Next  *string `json:"next"`
	}

	pageMeta struct {
		CurrentPage int    `json:"current_page"`
		From        *int   `json:"from"`
		LastPage    int    `json:"last_page"`
		Path        string `json:"path"`
		PerPage     int    `json:"per_page"`
		To          *int   `json:"to"`
		Total       int    `json:"total"`
	}
)

// parsePage reads the 1-based page parameter, defaulting to the first
// page on anything missing or nonsensical.
func parsePage(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	return page
}

// paginate builds the links and meta for one page of a listing. A page
// past the end yields empty from/to but keeps total and last_page
// correct, rather than erroring.
func paginate(r *http.Request, page, pageLen, total int) (pageLinks, pageMeta) {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	links := pageLinks{
		First: pageURL(r, 1),
		Last:  pageURL(r, lastPage),
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		links.Prev = &prev
	}
	if page < lastPage {
		next := pageURL(r, page+1)
		links.Next = &next
	}

	meta := pageMeta{
		CurrentPage: page,
		LastPage:    lastPage,
		Path:        r.URL.Path,
		PerPage:     perPage,
		Total:       total,
	}
	if pageLen > 0 {
		from := (page-1)*perPage + 1
		to := from + pageLen - 1
		meta.From = &from
		meta.To = &to
	}

	return links, meta
}

// pageURL rewrites the request URL with the given page number, keeping
// every other query parameter intact.
func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))

	u := url.URL{
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}

	return u.String()
}
