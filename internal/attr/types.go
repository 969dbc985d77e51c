// Package attr describes SCIM resource attributes (RFC 7643) and maps
// attribute paths onto database tables and columns. It is the metadata
// layer the SQL translation and the demo server share: both sides derive
// column and child-table names from the same ResourceType so a parsed
// filter can be applied to a schema migrated by gorm.
package attr

import (
	"fmt"
	"reflect"
)

// Type identifies a SCIM attribute data type (RFC 7643 section 2.3).
type Type string

const (
	TypeString    Type = "string"
	TypeBoolean   Type = "boolean"
	TypeDecimal   Type = "decimal"
	TypeInteger   Type = "integer"
	TypeDateTime  Type = "dateTime"
	TypeBinary    Type = "binary"
	TypeReference Type = "reference"
	TypeComplex   Type = "complex"
)

// String returns the RFC 7643 name of the type.
func (t Type) String() string {
	return string(t)
}

// TypeOf infers the SCIM attribute type for a Go type.
func TypeOf(goType reflect.Type) (Type, error) {
	if goType == nil {
		return "", fmt.Errorf("nil type")
	}

	// Handle pointer types
	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}

	// Check for specific known types
	if goType.PkgPath() == "time" && goType.Name() == "Time" {
		return TypeDateTime, nil
	}

	if goType.PkgPath() == "github.com/shopspring/decimal" && goType.Name() == "Decimal" {
		return TypeDecimal, nil
	}

	if goType == reflect.TypeOf(Decimal{}) {
		return TypeDecimal, nil
	}

	// UUIDs travel as plain SCIM strings.
	if goType.PkgPath() == "github.com/google/uuid" && goType.Name() == "UUID" {
		return TypeString, nil
	}

	// Handle byte slices
	if goType.Kind() == reflect.Slice && goType.Elem().Kind() == reflect.Uint8 {
		return TypeBinary, nil
	}

	if goType.Kind() == reflect.Array && goType.Elem().Kind() == reflect.Uint8 {
		return TypeBinary, nil
	}

	// A slice holds a multi-valued attribute; the SCIM type is the
	// element's type.
	if goType.Kind() == reflect.Slice {
		return TypeOf(goType.Elem())
	}

	// Map basic Go types to SCIM types
	switch goType.Kind() {
	case reflect.String:
		return TypeString, nil
	case reflect.Bool:
		return TypeBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return TypeInteger, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger, nil
	case reflect.Float32, reflect.Float64:
		return TypeDecimal, nil
	case reflect.Struct:
		return TypeComplex, nil
	default:
		return "", fmt.Errorf("unsupported Go type: %s", goType.String())
	}
}
