package job

import (
	"net/url"
	"strconv"
	"time"

	"job_tracker/internal/common"
)

type Job struct {
	ID           int        `json:"id"`
	UserID       int        `json:"user_id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	IsApplied    bool       `json:"is_applied"`
	PostedAt     time.Time  `json:"posted_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type JobInput struct {
	Title        string `json:"title" binding:"required"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

// JobUpdate replaces every mutable field of a job. A missing UpdatedAt
// means "now".
type JobUpdate struct {
	Title        string     `json:"title" binding:"required"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	IsApplied    bool       `json:"is_applied"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// ListFilter narrows a job listing. Zero values mean no search and no limit.
type ListFilter struct {
	Search string
	Limit  int
}

// ParseListFilter reads the search and limit query parameters.
func ParseListFilter(search, limit string) (ListFilter, error) {
	filter := ListFilter{Search: search}
	if limit == "" {
		return filter, nil
	}

	n, err := strconv.Atoi(limit)
	if err != nil || n < 0 {
		return ListFilter{}, common.Validation("Limit must be a non-negative integer")
	}
	filter.Limit = n
	return filter, nil
}

// CacheField identifies the filter inside an owner's cached listings.
func (f ListFilter) CacheField() string {
	v := url.Values{}
	v.Set("search", f.Search)
	v.Set("limit", strconv.Itoa(f.Limit))
	return v.Encode()
}
