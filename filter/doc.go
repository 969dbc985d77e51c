// Package filter parses SCIM filter and path expressions (RFC 7644
// section 3.4.2.2) into an abstract syntax tree.
//
// Parsing happens in two stages:
//
//  1. Lexing: the input string is scanned against an ordered table of
//     token patterns, producing a flat token stream. Pattern order is
//     significant; it is what separates operator keywords from attribute
//     names that contain the same letters.
//  2. Parsing: a recursive-descent parser consumes the stream and builds
//     the tree, re-tokenizing the contents of parenthesized groups as
//     independent sub-inputs.
//
// A parser is constructed for one of two modes. ModeFilter accepts the
// full boolean filter grammar used by the "filter" query parameter.
// ModePath additionally accepts PATCH path expressions such as
// "members[value eq \"2819c223\"].displayName", which name a target
// attribute rather than a predicate.
//
// Parse returns nil (and no error) for empty or whitespace-only input.
// A constructed Parser is immutable and safe for concurrent use.
package filter
