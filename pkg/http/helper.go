package http

import (
	"net/http"
	apperrors "sharely/pkg/errors"
	"strconv"
)

// UserIDHeader carries the acting user's id on every request.
const UserIDHeader = "X-Sharer-User-Id"

const DefaultPageSize = 10

// ExtractUserID reads the caller identity header. A missing header is a
// transport-level failure, not an engine concern.
func ExtractUserID(r *http.Request) (string, error) {
	id := r.Header.Get(UserIDHeader)
	if id == "" {
		return "", apperrors.InvalidInput(UserIDHeader + " header is required")
	}
	return id, nil
}

// ExtractPaging parses the from/size query parameters. Defaults are from=0 and
// size=10; a negative offset or non-positive size is rejected before any query runs.
func ExtractPaging(r *http.Request) (int64, int, error) {
	query := r.URL.Query()

	var from int64 = 0
	if s := query.Get("from"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid from parameter: " + s)
		}
		from = v
	}

	size := DefaultPageSize
	if s := query.Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid size parameter: " + s)
		}
		size = v
	}

	if from < 0 {
		return 0, 0, apperrors.InvalidInput("from must be zero or positive")
	}
	if size <= 0 {
		return 0, 0, apperrors.InvalidInput("size must be positive")
	}

	return from, size, nil
}
