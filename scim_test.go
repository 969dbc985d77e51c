package scim_test

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	scim "github.com/nlstn/go-scim"
	"github.com/nlstn/go-scim/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected filter.Node
	}{
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace input",
			input:    "   ",
			expected: nil,
		},
		{
			name:  "simple comparison",
			input: `userName eq "bjensen"`,
			expected: &filter.Comparison{
				Path:  filter.AttributePath{Names: []string{"userName"}},
				Op:    filter.OpEq,
				Value: "bjensen",
			},
		},
		{
			name:  "presence test",
			input: "title pr",
			expected: &filter.Comparison{
				Path: filter.AttributePath{Names: []string{"title"}},
				Op:   filter.OpPr,
			},
		},
		{
			name:  "schema qualified attribute",
			input: `urn:ietf:params:scim:schemas:core:2.0:User:userName sw "J"`,
			expected: &filter.Comparison{
				Path: filter.AttributePath{
					Schema: "urn:ietf:params:scim:schemas:core:2.0:User",
					Names:  []string{"userName"},
				},
				Op:    filter.OpSw,
				Value: "J",
			},
		},
		{
			name:  "connectives and value path",
			input: `userType eq "Employee" and emails[type eq "work" and value co "@example.com"]`,
			expected: &filter.Conjunction{
				Children: []filter.Node{
					&filter.Comparison{
						Path:  filter.AttributePath{Names: []string{"userType"}},
						Op:    filter.OpEq,
						Value: "Employee",
					},
					&filter.ValuePath{
						Path: filter.AttributePath{Names: []string{"emails"}},
						Inner: &filter.Conjunction{
							Children: []filter.Node{
								&filter.Comparison{
									Path:  filter.AttributePath{Names: []string{"emails", "type"}},
									Op:    filter.OpEq,
									Value: "work",
								},
								&filter.Comparison{
									Path:  filter.AttributePath{Names: []string{"emails", "value"}},
									Op:    filter.OpCo,
									Value: "@example.com",
								},
							},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := scim.ParseFilter(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, node)
		})
	}
}

func TestParseFilter_RejectsBarePaths(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"lone attribute", "userName"},
		{"dotted attribute", "name.familyName"},
		{"bare path as connective operand", "title pr and userName"},
		{"bare path in group", "(userName) and title pr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := scim.ParseFilter(tt.input)

			require.Error(t, err)
			assert.Nil(t, node)
			assert.True(t, scim.IsInvalidFilterError(err))
		})
	}
}

func TestParseFilter_ErrorMapping(t *testing.T) {
	node, err := scim.ParseFilter("userName eq")

	require.Error(t, err)
	assert.Nil(t, node)

	// The façade error carries the scimType and wraps the core error.
	var scimErr *scim.ScimError
	require.ErrorAs(t, err, &scimErr)
	assert.Equal(t, 400, scimErr.Status)
	assert.Equal(t, scim.ScimTypeInvalidFilter, scimErr.Type)

	assert.ErrorIs(t, err, scim.ErrInvalidFilter)
	assert.ErrorIs(t, err, filter.ErrSyntax)

	var syntaxErr *filter.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, -1, syntaxErr.Pos)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected filter.Node
	}{
		{
			name:     "simple attribute",
			input:    "members",
			expected: &filter.AttributePath{Names: []string{"members"}},
		},
		{
			name:     "sub-attribute",
			input:    "name.familyName",
			expected: &filter.AttributePath{Names: []string{"name", "familyName"}},
		},
		{
			name:  "schema qualified attribute",
			input: "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User:employeeNumber",
			expected: &filter.AttributePath{
				Schema: "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User",
				Names:  []string{"employeeNumber"},
			},
		},
		{
			name:  "value selection",
			input: `addresses[type eq "work"]`,
			expected: &filter.ValuePath{
				Path: filter.AttributePath{Names: []string{"addresses"}},
				Inner: &filter.Comparison{
					Path:  filter.AttributePath{Names: []string{"addresses", "type"}},
					Op:    filter.OpEq,
					Value: "work",
				},
			},
		},
		{
			name:  "value selection with trailing sub-attribute",
			input: `addresses[type eq "work"].streetAddress`,
			expected: &filter.ValuePath{
				Path: filter.AttributePath{Names: []string{"addresses", "streetAddress"}},
				Inner: &filter.Comparison{
					Path:  filter.AttributePath{Names: []string{"addresses", "type"}},
					Op:    filter.OpEq,
					Value: "work",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := scim.ParsePath(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, node)
		})
	}
}

func TestParsePath_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace input", "  "},
		{"filter expression is not a path", `userName eq "bjensen"`},
		{"unterminated value selection", `emails[type eq "work"`},
		{"negation is not a path", "not (userName pr)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := scim.ParsePath(tt.input)

			require.Error(t, err)
			assert.Nil(t, node)
			assert.True(t, scim.IsInvalidPathError(err))

			var scimErr *scim.ScimError
			require.ErrorAs(t, err, &scimErr)
			assert.Equal(t, scim.ScimTypeInvalidPath, scimErr.Type)
		})
	}
}

func TestWriteError(t *testing.T) {
	_, parseErr := scim.ParseFilter("userName eq")
	require.Error(t, parseErr)

	w := httptest.NewRecorder()
	scim.WriteError(w, parseErr)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/scim+json", w.Header().Get("Content-Type"))

	var body struct {
		Schemas  []string `json:"schemas"`
		ScimType string   `json:"scimType"`
		Detail   string   `json:"detail"`
		Status   string   `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, []string{scim.ErrorResponseSchema}, body.Schemas)
	assert.Equal(t, "invalidFilter", body.ScimType)
	assert.Equal(t, "400", body.Status)
	assert.Contains(t, body.Detail, "invalid filter")
}

func TestWriteError_KeepsWrappingContext(t *testing.T) {
	_, err := scim.ParseListRequest(url.Values{
		"sortBy": {`userName eq "x"`},
	})
	require.Error(t, err)

	w := httptest.NewRecorder()
	scim.WriteError(w, err)

	assert.Equal(t, 400, w.Code)

	var body struct {
		ScimType string `json:"scimType"`
		Detail   string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// The scimType comes from the inner ScimError, the detail keeps the
	// parameter context added by ParseListRequest.
	assert.Equal(t, "invalidPath", body.ScimType)
	assert.Contains(t, body.Detail, "invalid sortBy")
}

func TestEnableObservability(t *testing.T) {
	err := scim.EnableObservability(tracenoop.NewTracerProvider(), noopmetric.NewMeterProvider())
	require.NoError(t, err)

	// Parse calls record metrics once observability is enabled; they must
	// behave exactly as before.
	node, err := scim.ParseFilter("title pr")
	require.NoError(t, err)
	require.NotNil(t, node)

	_, err = scim.CachedParseFilter("title pr")
	require.NoError(t, err)

	_, err = scim.ParseFilter("title eq")
	require.Error(t, err)
}
