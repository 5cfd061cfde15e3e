package validation

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	MaxAnswerLength = 500

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 25
	DefaultSort  = "created_at:desc"
)

// MaxPage keeps (page-1)*limit within int.
const MaxPage = math.MaxInt / MaxLimit

var sortPattern = regexp.MustCompile(`^(created_at):(asc|desc)$`)

// CreateEntryInput is the request body of POST /entries.
type CreateEntryInput struct {
	WhatMattersMost string `json:"what_matters_most"`
	FearsOfLoss     string `json:"fears_of_loss"`
	PersonalGoals   string `json:"personal_goals"`
}

// ValidateEntryInput trims and NFC-normalises the three answers and checks
// their bounds. The returned input is what gets stored and sent to the model.
func ValidateEntryInput(in CreateEntryInput) (CreateEntryInput, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"what_matters_most", &in.WhatMattersMost},
		{"fears_of_loss", &in.FearsOfLoss},
		{"personal_goals", &in.PersonalGoals},
	}

	for _, f := range fields {
		v := norm.NFC.String(strings.TrimSpace(*f.value))
		if v == "" {
			return CreateEntryInput{}, newError(f.name, "must not be empty")
		}
		if utf8.RuneCountInString(v) > MaxAnswerLength {
			return CreateEntryInput{}, newError(f.name, "must be at most %d characters", MaxAnswerLength)
		}
		*f.value = v
	}

	return in, nil
}

// ListQuery is the parsed query of GET /entries.
type ListQuery struct {
	Page      int
	Limit     int
	SortField string
	SortDesc  bool
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// DefaultListQuery is used by callers that do not paginate.
func DefaultListQuery() ListQuery {
	return ListQuery{Page: DefaultPage, Limit: DefaultLimit, SortField: "created_at", SortDesc: true}
}

// ParseListQuery applies defaults and rejects malformed or unknown parameters.
func ParseListQuery(values url.Values) (ListQuery, error) {
	for key := range values {
		switch key {
		case "page", "limit", "sort":
		default:
			return ListQuery{}, newError(key, "unknown query parameter")
		}
	}

	q := DefaultListQuery()

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return ListQuery{}, newError("page", "must be an integer")
		}
		if page < 1 {
			return ListQuery{}, newError("page", "must be positive")
		}
		if page > MaxPage {
			return ListQuery{}, newError("page", "must be at most %d", MaxPage)
		}
		q.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ListQuery{}, newError("limit", "must be an integer")
		}
		if limit < 1 {
			return ListQuery{}, newError("limit", "must be positive")
		}
		if limit > MaxLimit {
			return ListQuery{}, newError("limit", "must be at most %d", MaxLimit)
		}
		q.Limit = limit
	}

	sort := DefaultSort
	if raw := values.Get("sort"); raw != "" {
		sort = raw
	}
	m := sortPattern.FindStringSubmatch(sort)
	if m == nil {
		return ListQuery{}, newError("sort", "must match field:direction with direction asc or desc")
	}
	q.SortField = m[1]
	q.SortDesc = m[2] == "desc"

	return q, nil
}

// ValidateID accepts only the canonical 36 character UUID form.
func ValidateID(id string) error {
	if len(id) != 36 {
		return newError("id", "invalid ID format")
	}
	if _, err := uuid.Parse(id); err != nil {
		return newError("id", "invalid ID format")
	}
	return nil
}
