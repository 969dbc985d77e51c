package attr_test

import (
	"testing"

	"github.com/nlstn/go-scim/filter"
	"github.com/nlstn/go-scim/internal/attr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceTypeResolve(t *testing.T) {
	rt := attr.CoreUser()

	tests := []struct {
		name string
		path filter.AttributePath
		want attr.Type
	}{
		{
			name: "top-level attribute",
			path: filter.AttributePath{Names: []string{"userName"}},
			want: attr.TypeString,
		},
		{
			name: "case-insensitive match",
			path: filter.AttributePath{Names: []string{"USERNAME"}},
			want: attr.TypeString,
		},
		{
			name: "sub-attribute",
			path: filter.AttributePath{Names: []string{"name", "familyName"}},
			want: attr.TypeString,
		},
		{
			name: "case-insensitive sub-attribute",
			path: filter.AttributePath{Names: []string{"Name", "FAMILYNAME"}},
			want: attr.TypeString,
		},
		{
			name: "multi-valued sub-attribute",
			path: filter.AttributePath{Names: []string{"emails", "type"}},
			want: attr.TypeString,
		},
		{
			name: "boolean attribute",
			path: filter.AttributePath{Names: []string{"active"}},
			want: attr.TypeBoolean,
		},
		{
			name: "schema prefix is ignored",
			path: filter.AttributePath{
				Schema: "urn:ietf:params:scim:schemas:core:2.0:User",
				Names:  []string{"userName"},
			},
			want: attr.TypeString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := rt.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Type)
		})
	}
}

func TestResourceTypeResolve_Complex(t *testing.T) {
	rt := attr.CoreUser()

	a, err := rt.Resolve(filter.AttributePath{Names: []string{"emails"}})
	require.NoError(t, err)
	assert.Equal(t, attr.TypeComplex, a.Type)
	assert.True(t, a.MultiValued)
	assert.NotEmpty(t, a.Sub)

	a, err = rt.Resolve(filter.AttributePath{Names: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, attr.TypeComplex, a.Type)
	assert.False(t, a.MultiValued)
}

func TestResourceTypeResolve_Errors(t *testing.T) {
	rt := attr.CoreUser()

	_, err := rt.Resolve(filter.AttributePath{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty attribute path")

	_, err = rt.Resolve(filter.AttributePath{Names: []string{"shoeSize"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown attribute "shoeSize"`)

	_, err = rt.Resolve(filter.AttributePath{Names: []string{"name", "maidenName"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown attribute "name.maidenName"`)

	_, err = rt.Resolve(filter.AttributePath{Names: []string{"userName", "first"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `attribute "userName" has no sub-attributes`)
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"userName", "user_name"},
		{"familyName", "family_name"},
		{"streetAddress", "street_address"},
		{"externalId", "external_id"},
		{"profileUrl", "profile_url"},
		{"id", "id"},
		{"active", "active"},
		{"ProductID", "product_id"},
		{"XMLParser", "xml_parser"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, attr.ColumnName(tt.in), "ColumnName(%q)", tt.in)
	}
}

func TestChildTableNaming(t *testing.T) {
	rt := attr.CoreUser()

	emails, err := rt.Resolve(filter.AttributePath{Names: []string{"emails"}})
	require.NoError(t, err)
	assert.Equal(t, "users_emails", rt.ChildTable(emails))

	phones, err := rt.Resolve(filter.AttributePath{Names: []string{"phoneNumbers"}})
	require.NoError(t, err)
	assert.Equal(t, "users_phone_numbers", rt.ChildTable(phones))

	assert.Equal(t, "user_id", rt.ChildForeignKey())
}

func TestChildForeignKeySingularizes(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"users", "user_id"},
		{"addresses", "address_id"},
		{"categories", "category_id"},
		{"boxes", "box_id"},
		{"staff", "staff_id"},
	}

	for _, tt := range tests {
		rt := &attr.ResourceType{Table: tt.table}
		assert.Equal(t, tt.want, rt.ChildForeignKey(), "table %q", tt.table)
	}
}

func TestCoreUserIsFreshPerCall(t *testing.T) {
	first := attr.CoreUser()
	first.Attributes[0].Name = "mutated"

	second := attr.CoreUser()
	assert.Equal(t, "id", second.Attributes[0].Name)
}
