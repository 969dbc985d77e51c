package scim

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nlstn/go-scim/filter"
)

// ErrorResponseSchema is the URN of the SCIM error response message type
// (RFC 7644 section 3.12).
const ErrorResponseSchema = "urn:ietf:params:scim:api:messages:2.0:Error"

// Sentinel errors for common SCIM error conditions.
// These can be used with errors.Is() for error handling.
var (
	// ErrInvalidFilter indicates a filter expression that does not conform
	// to the RFC 7644 filter grammar or contains unsupported constructs.
	// Maps to HTTP 400 Bad Request with scimType "invalidFilter".
	ErrInvalidFilter = errors.New("scim: invalid filter")

	// ErrInvalidPath indicates a path expression that is malformed or does
	// not name an attribute target.
	// Maps to HTTP 400 Bad Request with scimType "invalidPath".
	ErrInvalidPath = errors.New("scim: invalid path")

	// ErrInvalidValue indicates a query parameter value that is malformed
	// or inconsistent with another parameter.
	// Maps to HTTP 400 Bad Request with scimType "invalidValue".
	ErrInvalidValue = errors.New("scim: invalid value")
)

// ScimType represents the SCIM detail error keyword carried in the
// "scimType" member of an error response.
// These values follow the RFC 7644 section 3.12 table.
type ScimType string

// Standard SCIM detail error keywords as defined in RFC 7644.
const (
	// ScimTypeInvalidFilter indicates the filter syntax was invalid or the
	// specified attribute and comparison combination is not supported.
	ScimTypeInvalidFilter ScimType = "invalidFilter"

	// ScimTypeTooMany indicates the filter yields more results than the
	// service provider is willing to calculate or process.
	ScimTypeTooMany ScimType = "tooMany"

	// ScimTypeUniqueness indicates one or more attribute values are
	// already in use or reserved.
	ScimTypeUniqueness ScimType = "uniqueness"

	// ScimTypeMutability indicates the modification is incompatible with
	// an attribute's mutability.
	ScimTypeMutability ScimType = "mutability"

	// ScimTypeInvalidSyntax indicates the request body structure was
	// invalid or did not conform to the request schema.
	ScimTypeInvalidSyntax ScimType = "invalidSyntax"

	// ScimTypeInvalidPath indicates the "path" attribute was invalid or
	// malformed.
	ScimTypeInvalidPath ScimType = "invalidPath"

	// ScimTypeNoTarget indicates the path did not yield an attribute or
	// value that could be operated on.
	ScimTypeNoTarget ScimType = "noTarget"

	// ScimTypeInvalidValue indicates a required value was missing, or the
	// value specified was not compatible with the operation.
	ScimTypeInvalidValue ScimType = "invalidValue"

	// ScimTypeInvalidVers indicates the specified SCIM protocol version is
	// not supported.
	ScimTypeInvalidVers ScimType = "invalidVers"

	// ScimTypeSensitive indicates the request cannot be completed because
	// it would expose sensitive information in a URI.
	ScimTypeSensitive ScimType = "sensitive"
)

// ScimError provides a structured error that includes an HTTP status code,
// SCIM detail error keyword, and descriptive message. Its JSON form is the
// RFC 7644 section 3.12 error response body, so a handler can encode it
// directly.
//
// Example usage in a list handler:
//
//	req, err := scim.ParseListRequest(r.URL.Query())
//	if err != nil {
//	    scim.WriteError(w, err)
//	    return
//	}
type ScimError struct {
	// Status is the HTTP status code of the response (e.g., 400, 500).
	Status int

	// Type is the SCIM detail error keyword. Per RFC 7644 it is only
	// populated for 400-series responses that have a matching keyword.
	Type ScimType

	// Detail is a human-readable error description.
	Detail string

	// Err is the underlying error, if any. This allows error wrapping while
	// maintaining compatibility with errors.Is() and errors.As().
	Err error
}

// Error implements the error interface.
func (e *ScimError) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Type)
}

// Unwrap implements error unwrapping for errors.Is() and errors.As().
func (e *ScimError) Unwrap() error {
	return e.Err
}

// Is maps the error's scimType onto the package sentinels, so
// errors.Is(err, ErrInvalidFilter) matches any ScimError carrying
// scimType "invalidFilter" regardless of how it was built.
func (e *ScimError) Is(target error) bool {
	switch target {
	case ErrInvalidFilter:
		return e.Type == ScimTypeInvalidFilter
	case ErrInvalidPath:
		return e.Type == ScimTypeInvalidPath
	case ErrInvalidValue:
		return e.Type == ScimTypeInvalidValue
	}
	return false
}

// MarshalJSON encodes the error as an RFC 7644 error response body. The
// "status" member is a string per the RFC, and "scimType" is omitted when
// the error has no detail keyword.
func (e *ScimError) MarshalJSON() ([]byte, error) {
	body := struct {
		Schemas  []string `json:"schemas"`
		ScimType ScimType `json:"scimType,omitempty"`
		Detail   string   `json:"detail,omitempty"`
		Status   string   `json:"status"`
	}{
		Schemas:  []string{ErrorResponseSchema},
		ScimType: e.Type,
		Detail:   e.Error(),
		Status:   strconv.Itoa(e.Status),
	}
	return json.Marshal(body)
}

// MapErrorToHTTPStatus returns the appropriate HTTP status code for common errors.
// This helper can be used in custom handlers to determine status codes.
//
// Example usage:
//
//	status := scim.MapErrorToHTTPStatus(err)
//	w.WriteHeader(status)
func MapErrorToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	// Check for ScimError first
	var scimErr *ScimError
	if errors.As(err, &scimErr) && scimErr.Status != 0 {
		return scimErr.Status
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, filter.ErrSyntax):
		return http.StatusBadRequest
	case errors.Is(err, filter.ErrInvalidValuePath):
		return http.StatusBadRequest
	case errors.Is(err, filter.ErrInternal):
		return http.StatusInternalServerError
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

// WriteError writes err to w as an RFC 7644 error response. The HTTP
// status and scimType come from the innermost ScimError in the chain when
// there is one; the detail text is the full error message including any
// wrapping context.
func WriteError(w http.ResponseWriter, err error) {
	status := MapErrorToHTTPStatus(err)

	body := &ScimError{Status: status, Detail: err.Error()}
	var scimErr *ScimError
	if errors.As(err, &scimErr) {
		body.Type = scimErr.Type
	}

	w.Header().Set("Content-Type", "application/scim+json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil && logger != nil {
		logger.Error("failed to encode error response", "error", encErr)
	}
}

// IsInvalidFilterError returns true if the error reports an invalid filter
// expression.
//
// Example usage:
//
//	node, err := scim.ParseFilter(input)
//	if scim.IsInvalidFilterError(err) {
//	    // Reject the request as a client error
//	}
func IsInvalidFilterError(err error) bool {
	return errors.Is(err, ErrInvalidFilter)
}

// IsInvalidPathError returns true if the error reports an invalid path
// expression.
func IsInvalidPathError(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}
