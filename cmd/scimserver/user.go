package main

import (
	"github.com/google/uuid"
)

// UserSchema is the RFC 7643 core User schema URI.
const UserSchema = "urn:ietf:params:scim:schemas:core:2.0:User"

// User is the database row backing a SCIM User. Column names follow
// attr.CoreUser(): single-valued complex attributes are flattened with an
// underscore prefix, multi-valued ones hang off child tables.
type User struct {
	ID                string `gorm:"primaryKey"`
	ExternalID        string
	UserName          string `gorm:"uniqueIndex"`
	NameFormatted     string
	NameFamilyName    string
	NameGivenName     string
	DisplayName       string
	NickName          string
	Title             *string
	UserType          string
	PreferredLanguage string
	Locale            string
	Timezone          string
	Active            bool

	Emails       []UserEmail `gorm:"foreignKey:UserID"`
	PhoneNumbers []UserPhone `gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }

// UserEmail is one row of the multi-valued emails attribute.
type UserEmail struct {
	ID      uint   `gorm:"primaryKey"`
	UserID  string `gorm:"index"`
	Value   string
	Display string
	Type    string
	Primary bool
}

func (UserEmail) TableName() string { return "users_emails" }

// UserPhone is one row of the multi-valued phoneNumbers attribute.
type UserPhone struct {
	ID      uint   `gorm:"primaryKey"`
	UserID  string `gorm:"index"`
	Value   string
	Display string
	Type    string
	Primary bool
}

func (UserPhone) TableName() string { return "users_phone_numbers" }

// scimName is the "name" complex attribute on the wire.
type scimName struct {
	Formatted  string `json:"formatted,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
	GivenName  string `json:"givenName,omitempty"`
}

// scimMultiValue is the common shape of emails and phoneNumbers entries.
type scimMultiValue struct {
	Value   string `json:"value,omitempty"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// scimUser is the JSON representation of a User resource.
type scimUser struct {
	Schemas           []string         `json:"schemas"`
	ID                string           `json:"id"`
	ExternalID        string           `json:"externalId,omitempty"`
	UserName          string           `json:"userName"`
	Name              *scimName        `json:"name,omitempty"`
	DisplayName       string           `json:"displayName,omitempty"`
	NickName          string           `json:"nickName,omitempty"`
	Title             string           `json:"title,omitempty"`
	UserType          string           `json:"userType,omitempty"`
	PreferredLanguage string           `json:"preferredLanguage,omitempty"`
	Locale            string           `json:"locale,omitempty"`
	Timezone          string           `json:"timezone,omitempty"`
	Active            bool             `json:"active"`
	Emails            []scimMultiValue `json:"emails,omitempty"`
	PhoneNumbers      []scimMultiValue `json:"phoneNumbers,omitempty"`
}

func (u *User) toSCIM() scimUser {
	out := scimUser{
		Schemas:           []string{UserSchema},
		ID:                u.ID,
		ExternalID:        u.ExternalID,
		UserName:          u.UserName,
		DisplayName:       u.DisplayName,
		NickName:          u.NickName,
		UserType:          u.UserType,
		PreferredLanguage: u.PreferredLanguage,
		Locale:            u.Locale,
		Timezone:          u.Timezone,
		Active:            u.Active,
	}
	if u.Title != nil {
		out.Title = *u.Title
	}
	if u.NameFormatted != "" || u.NameFamilyName != "" || u.NameGivenName != "" {
		out.Name = &scimName{
			Formatted:  u.NameFormatted,
			FamilyName: u.NameFamilyName,
			GivenName:  u.NameGivenName,
		}
	}
	for _, e := range u.Emails {
		out.Emails = append(out.Emails, scimMultiValue{Value: e.Value, Display: e.Display, Type: e.Type, Primary: e.Primary})
	}
	for _, p := range u.PhoneNumbers {
		out.PhoneNumbers = append(out.PhoneNumbers, scimMultiValue{Value: p.Value, Display: p.Display, Type: p.Type, Primary: p.Primary})
	}
	return out
}

func strPtr(s string) *string { return &s }

// sampleUsers returns the seed data, loosely following the examples in
// RFC 7643 section 8.
func sampleUsers() []User {
	return []User{
		{
			ID:             uuid.NewString(),
			ExternalID:     "701984",
			UserName:       "bjensen",
			NameFormatted:  "Ms. Barbara J Jensen, III",
			NameFamilyName: "Jensen",
			NameGivenName:  "Barbara",
			DisplayName:    "Babs Jensen",
			NickName:       "Babs",
			Title:          strPtr("Tour Guide"),
			UserType:       "Employee",
			Locale:         "en-US",
			Timezone:       "America/Los_Angeles",
			Active:         true,
			Emails: []UserEmail{
				{Value: "bjensen@example.com", Type: "work", Primary: true},
				{Value: "babs@jensen.org", Type: "home"},
			},
			PhoneNumbers: []UserPhone{
				{Value: "555-555-5555", Type: "work"},
				{Value: "555-555-4444", Type: "mobile"},
			},
		},
		{
			ID:             uuid.NewString(),
			UserName:       "jsmith",
			NameFormatted:  "Mr. John Smith",
			NameFamilyName: "Smith",
			NameGivenName:  "John",
			DisplayName:    "John Smith",
			UserType:       "Employee",
			Locale:         "en-US",
			Active:         true,
			Emails: []UserEmail{
				{Value: "jsmith@example.com", Type: "work", Primary: true},
			},
		},
		{
			ID:             uuid.NewString(),
			UserName:       "mpepper",
			NameFamilyName: "Pepper",
			NameGivenName:  "Molly",
			DisplayName:    "Molly Pepper",
			UserType:       "Intern",
			Active:         false,
			Emails: []UserEmail{
				{Value: "molly@pepper.net", Type: "home"},
			},
			PhoneNumbers: []UserPhone{
				{Value: "555-555-8377", Type: "mobile"},
			},
		},
	}
}
