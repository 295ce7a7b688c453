package httputil

import (
	"net/http"
	"strconv"

	apperrors "tripdesk/pkg/errors"
)

// ExtractPageLimit reads 1-indexed page/limit query parameters, falling back
// to the given defaults when absent.
func ExtractPageLimit(r *http.Request, defaultLimit int) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := defaultLimit
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	return page, limit, nil
}
