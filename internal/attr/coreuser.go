package attr

// CoreUser returns the RFC 7643 section 4.1 User resource type, including
// the common attributes id, externalId and meta. Callers may modify the
// returned value; every call builds a fresh copy.
func CoreUser() *ResourceType {
	return &ResourceType{
		Name:  "User",
		Table: "users",
		Attributes: []Attribute{
			{Name: "id", Type: TypeString, CaseExact: true},
			{Name: "externalId", Type: TypeString, CaseExact: true},
			{Name: "userName", Type: TypeString},
			{Name: "name", Type: TypeComplex, Sub: []Attribute{
				{Name: "formatted", Type: TypeString},
				{Name: "familyName", Type: TypeString},
				{Name: "givenName", Type: TypeString},
				{Name: "middleName", Type: TypeString},
				{Name: "honorificPrefix", Type: TypeString},
				{Name: "honorificSuffix", Type: TypeString},
			}},
			{Name: "displayName", Type: TypeString},
			{Name: "nickName", Type: TypeString},
			{Name: "profileUrl", Type: TypeReference, CaseExact: true},
			{Name: "title", Type: TypeString},
			{Name: "userType", Type: TypeString},
			{Name: "preferredLanguage", Type: TypeString},
			{Name: "locale", Type: TypeString},
			{Name: "timezone", Type: TypeString},
			{Name: "active", Type: TypeBoolean},
			{Name: "emails", Type: TypeComplex, MultiValued: true, Sub: []Attribute{
				{Name: "value", Type: TypeString},
				{Name: "display", Type: TypeString},
				{Name: "type", Type: TypeString},
				{Name: "primary", Type: TypeBoolean},
			}},
			{Name: "phoneNumbers", Type: TypeComplex, MultiValued: true, Sub: []Attribute{
				{Name: "value", Type: TypeString},
				{Name: "display", Type: TypeString},
				{Name: "type", Type: TypeString},
				{Name: "primary", Type: TypeBoolean},
			}},
			{Name: "ims", Type: TypeComplex, MultiValued: true, Sub: []Attribute{
				{Name: "value", Type: TypeString},
				{Name: "display", Type: TypeString},
				{Name: "type", Type: TypeString},
				{Name: "primary", Type: TypeBoolean},
			}},
			{Name: "photos", Type: TypeComplex, MultiValued: true, Sub: []Attribute{
				{Name: "value", Type: TypeReference, CaseExact: true},
				{Name: "display", Type: TypeString},
				{Name: "type", Type: TypeString},
				{Name: "primary", Type: TypeBoolean},
			}},
			{Name: "addresses", Type: TypeComplex, MultiValued: true, Sub: []Attribute{
				{Name: "formatted", Type: TypeString},
				{Name: "streetAddress", Type: TypeString},
				{Name: "locality", Type: TypeString},
				{Name: "region", Type: TypeString},
				{Name: "postalCode", Type: TypeString},
				{Name: "country", Type: TypeString},
				{Name: "type", Type: TypeString},
				{Name: "primary", Type: TypeBoolean},
			}},
			{Name: "meta", Type: TypeComplex, Sub: []Attribute{
				{Name: "resourceType", Type: TypeString, CaseExact: true},
				{Name: "created", Type: TypeDateTime},
				{Name: "lastModified", Type: TypeDateTime},
				{Name: "location", Type: TypeReference, CaseExact: true},
				{Name: "version", Type: TypeString, CaseExact: true},
			}},
		},
	}
}
