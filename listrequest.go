package scim

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nlstn/go-scim/filter"
)

// ListResponseSchema is the URN of the SCIM list response message type
// (RFC 7644 section 3.4.2).
const ListResponseSchema = "urn:ietf:params:scim:api:messages:2.0:ListResponse"

// SortOrder is the direction of a sorted list response.
type SortOrder string

const (
	// SortAscending sorts smallest first. This is the default.
	SortAscending SortOrder = "ascending"

	// SortDescending sorts largest first.
	SortDescending SortOrder = "descending"
)

// ListRequest represents the parsed RFC 7644 section 3.4.2 list/query
// parameters of one request.
type ListRequest struct {
	// Filter is the parsed filter expression, nil when the request has none.
	Filter filter.Node

	// SortBy is the parsed sortBy path, nil when the request has none.
	SortBy filter.Node

	// SortOrder is ascending unless the request said otherwise. It is set
	// even when SortBy is nil.
	SortOrder SortOrder

	// StartIndex is the 1-based index of the first result. Values below 1
	// are coerced to 1 per the RFC.
	StartIndex int

	// Count is the requested page size, nil when the request has none.
	// Negative values are coerced to 0 per the RFC (0 returns only totals).
	Count *int

	// Attributes holds the parsed attribute paths to return. Mutually
	// exclusive with ExcludedAttributes.
	Attributes []filter.Node

	// ExcludedAttributes holds the parsed attribute paths to omit.
	ExcludedAttributes []filter.Node
}

// ParseListRequest parses SCIM list/query parameters from the URL. Every
// failure resolves to a *ScimError in the chain, so WriteError can render
// it; the message names the offending parameter.
func ParseListRequest(params url.Values) (*ListRequest, error) {
	req := &ListRequest{
		SortOrder:  SortAscending,
		StartIndex: 1,
	}

	if err := parseFilterParam(params, req); err != nil {
		return nil, err
	}

	if err := parseSortParams(params, req); err != nil {
		return nil, err
	}

	if err := parseStartIndexParam(params, req); err != nil {
		return nil, err
	}

	if err := parseCountParam(params, req); err != nil {
		return nil, err
	}

	if err := parseAttributesParams(params, req); err != nil {
		return nil, err
	}

	return req, nil
}

// parseFilterParam parses the filter query parameter.
func parseFilterParam(params url.Values, req *ListRequest) error {
	if filterStr := params.Get("filter"); filterStr != "" {
		node, err := ParseFilter(filterStr)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		req.Filter = node
	}
	return nil
}

// parseSortParams parses the sortBy and sortOrder query parameters.
func parseSortParams(params url.Values, req *ListRequest) error {
	if sortByStr := params.Get("sortBy"); sortByStr != "" {
		node, err := ParsePath(sortByStr)
		if err != nil {
			return fmt.Errorf("invalid sortBy: %w", err)
		}
		req.SortBy = node
	}

	if sortOrderStr := params.Get("sortOrder"); sortOrderStr != "" {
		switch SortOrder(strings.ToLower(sortOrderStr)) {
		case SortAscending:
			req.SortOrder = SortAscending
		case SortDescending:
			req.SortOrder = SortDescending
		default:
			return invalidValue(`invalid sortOrder: must be "ascending" or "descending"`)
		}
	}
	return nil
}

// parseStartIndexParam parses the startIndex query parameter.
func parseStartIndexParam(params url.Values, req *ListRequest) error {
	if startStr := params.Get("startIndex"); startStr != "" {
		v, err := strconv.Atoi(startStr)
		if err != nil {
			return invalidValue("invalid startIndex: must be an integer")
		}
		// RFC 7644: a value less than 1 is interpreted as 1.
		if v < 1 {
			v = 1
		}
		req.StartIndex = v
	}
	return nil
}

// parseCountParam parses the count query parameter.
func parseCountParam(params url.Values, req *ListRequest) error {
	if countStr := params.Get("count"); countStr != "" {
		v, err := strconv.Atoi(countStr)
		if err != nil {
			return invalidValue("invalid count: must be an integer")
		}
		// RFC 7644: a negative value is interpreted as 0.
		if v < 0 {
			v = 0
		}
		req.Count = &v
	}
	return nil
}

// parseAttributesParams parses the attributes and excludedAttributes
// query parameters.
func parseAttributesParams(params url.Values, req *ListRequest) error {
	attrStr := params.Get("attributes")
	exclStr := params.Get("excludedAttributes")
	if attrStr != "" && exclStr != "" {
		return invalidValue("attributes and excludedAttributes are mutually exclusive")
	}

	if attrStr != "" {
		nodes, err := parsePathList(attrStr)
		if err != nil {
			return fmt.Errorf("invalid attributes: %w", err)
		}
		req.Attributes = nodes
	}

	if exclStr != "" {
		nodes, err := parsePathList(exclStr)
		if err != nil {
			return fmt.Errorf("invalid excludedAttributes: %w", err)
		}
		req.ExcludedAttributes = nodes
	}
	return nil
}

// parsePathList parses a comma-separated list of attribute paths.
func parsePathList(s string) ([]filter.Node, error) {
	parts := strings.Split(s, ",")
	nodes := make([]filter.Node, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		node, err := ParsePath(trimmed)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func invalidValue(detail string) error {
	return &ScimError{
		Status: http.StatusBadRequest,
		Type:   ScimTypeInvalidValue,
		Detail: detail,
	}
}
