package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"socialapp/internal/apperr"
	"socialapp/internal/repositories"
)

// Page sizes of the paginated listings.
const (
	receivedCommentsPageSize = 5
	ownCommentsPageSize      = 10
	latestCommentsPageSize   = 5
	profileListPageSize      = 20
)

// Paginated is the envelope of every paginated listing.
type Paginated struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// pageOf reads the 1-based ?page= parameter.
func pageOf(c *fiber.Ctx, size int) (repositories.Page, error) {
	raw := c.Query("page", "1")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return repositories.Page{}, apperr.NotFound("Invalid page.")
	}
	return repositories.Page{Number: n, Size: size}, nil
}

// paginate wraps results, rejecting pages past the end of a non-empty
// listing.
func paginate(c *fiber.Ctx, page repositories.Page, total int64, results interface{}) (*Paginated, error) {
	if page.Number > 1 && int64(page.Offset()) >= total {
		return nil, apperr.NotFound("Invalid page.")
	}
	p := &Paginated{Count: total, Results: results}
	if int64(page.Offset()+page.Size) < total {
		p.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		p.Previous = pageURL(c, page.Number-1)
	}
	return p, nil
}

func pageURL(c *fiber.Ctx, n int) *string {
	q := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		q.Add(string(k), string(v))
	})
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u := c.BaseURL() + c.Path()
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return &u
}
