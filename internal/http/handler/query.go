package handler

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/repository"
	"linkedapi/internal/service"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// listFields whitelists the document keys a list endpoint may filter and sort on.
type listFields struct {
	filter map[string]bool
	sort   map[string]bool
	// paths maps a query parameter onto a nested document path.
	paths map[string]string
}

func fieldSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var (
	userListFields = listFields{
		filter: fieldSet("firstName", "lastName", "username", "title", "location", "area"),
		sort:   fieldSet("firstName", "lastName", "username", "title", "createdAt", "updatedAt"),
		// area lives on the embedded experiences; a user matches if any experience does.
		paths: map[string]string{"area": "experiences.area"},
	}
	postListFields = listFields{
		filter: fieldSet("user", "text"),
		sort:   fieldSet("createdAt", "updatedAt", "text"),
	}
)

// reservedParams are control parameters, never filters.
var reservedParams = map[string]bool{"limit": true, "offset": true, "skip": true, "sort": true}

var regexValue = regexp.MustCompile(`^/(.*)/(i?)$`)

// parseListQuery translates the query string into a ListQuery:
//
//	limit=20&offset=40          paging (skip is an alias of offset)
//	sort=lastName,-createdAt    ascending, "-" for descending
//	title=CEO                   equality
//	title=!CEO                  inequality
//	firstName=/^jo/i            regex, "i" for case-insensitive
//
// Filters on fields outside the whitelist are ignored; unknown sort fields are rejected.
func parseListQuery(c *fiber.Ctx, fields listFields) (repository.ListQuery, error) {
	q := repository.ListQuery{Limit: defaultLimit}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%w: limit must be an integer", service.ErrInvalidQuery)
		}
		if n > 0 {
			q.Limit = min(n, maxLimit)
		}
	}

	offset := c.Query("offset", c.Query("skip"))
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return q, fmt.Errorf("%w: offset must be an integer", service.ErrInvalidQuery)
		}
		q.Offset = max(n, 0)
	}

	if v := c.Query("sort"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			desc := strings.HasPrefix(part, "-")
			name := strings.TrimLeft(part, "-+")
			if !fields.sort[name] {
				return q, fmt.Errorf("%w: cannot sort by %q", service.ErrInvalidQuery, name)
			}
			q.Sort = append(q.Sort, repository.SortField{Field: name, Desc: desc})
		}
	}

	var parseErr error
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if parseErr != nil || reservedParams[key] || !fields.filter[key] {
			return
		}
		field := key
		if p, ok := fields.paths[key]; ok {
			field = p
		}
		cond, err := parseCondition(field, string(v))
		if err != nil {
			parseErr = err
			return
		}
		q.Filter = append(q.Filter, cond)
	})
	return q, parseErr
}

func parseCondition(field, value string) (repository.Condition, error) {
	if m := regexValue.FindStringSubmatch(value); m != nil {
		if _, err := regexp.Compile(m[1]); err != nil {
			return repository.Condition{}, fmt.Errorf("%w: invalid regex for %s", service.ErrInvalidQuery, field)
		}
		return repository.Condition{Field: field, Op: repository.OpRegex, Value: m[1], IgnoreCase: m[2] == "i"}, nil
	}
	if rest, ok := strings.CutPrefix(value, "!"); ok {
		return repository.Condition{Field: field, Op: repository.OpNe, Value: rest}, nil
	}
	return repository.Condition{Field: field, Op: repository.OpEq, Value: value}, nil
}

// pageLinks are navigation URLs for a list response.
type pageLinks struct {
	First string `json:"first"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last"`
}

// pageMeta is embedded in every list response.
type pageMeta struct {
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
	Links      pageLinks `json:"links"`
}

// newPageMeta builds links that keep the request's filters and sort.
func newPageMeta(c *fiber.Ctx, q repository.ListQuery, total int) pageMeta {
	params := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if key := string(k); key != "offset" && key != "skip" && key != "limit" {
			params.Add(key, string(v))
		}
	})
	base := c.BaseURL() + c.Path()
	link := func(offset int) string {
		p := url.Values{}
		for k, vs := range params {
			p[k] = vs
		}
		p.Set("limit", strconv.Itoa(q.Limit))
		p.Set("offset", strconv.Itoa(offset))
		return base + "?" + p.Encode()
	}

	lastOffset := 0
	if total > 0 {
		lastOffset = ((total - 1) / q.Limit) * q.Limit
	}
	meta := pageMeta{
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		Links: pageLinks{
			First: link(0),
			Last:  link(lastOffset),
		},
	}
	if q.Offset > 0 {
		meta.Links.Prev = link(max(q.Offset-q.Limit, 0))
	}
	if q.Offset+q.Limit < total {
		meta.Links.Next = link(q.Offset + q.Limit)
	}
	return meta
}
