package composables

import (
	"net/http"
	"strconv"
)

type PaginationParams struct {
	Limit  int
	Offset int
	Page   int
}

// UsePaginated reads page and limit query parameters. limit is clamped to maxLimit and
// falls back to defaultLimit when absent or invalid.
func UsePaginated(r *http.Request, defaultLimit, maxLimit int) PaginationParams {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return PaginationParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
		Page:   page,
	}
}
