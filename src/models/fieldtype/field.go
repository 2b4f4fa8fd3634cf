// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package fieldtype

// A Type defines a type of a model's field
type Type string

// Types for model fields
const (
	NoType    Type = ""
	Binary    Type = "binary"
	Boolean   Type = "boolean"
	Char      Type = "char"
	Date      Type = "date"
	DateTime  Type = "datetime"
	Float     Type = "float"
	HTML      Type = "html"
	Integer   Type = "integer"
	Many2Many Type = "many2many"
	Many2One  Type = "many2one"
	Monetary  Type = "monetary"
	One2Many  Type = "one2many"
	One2One   Type = "one2one"
	Reference Type = "reference"
	Selection Type = "selection"
	Text      Type = "text"
)

var knownTypes = map[Type]bool{
	Binary:    true,
	Boolean:   true,
	Char:      true,
	Date:      true,
	DateTime:  true,
	Float:     true,
	HTML:      true,
	Integer:   true,
	Many2Many: true,
	Many2One:  true,
	Monetary:  true,
	One2Many:  true,
	One2One:   true,
	Reference: true,
	Selection: true,
	Text:      true,
}

// IsValid returns true if t is one of the known field types
func (t Type) IsValid() bool {
	return knownTypes[t]
}

// Is2ManyRelationType returns true for relation types
// that point to multiple comodel records (i.e. M2M and O2M)
func (t Type) Is2ManyRelationType() bool {
	return t == Many2Many || t == One2Many
}

// IsNumeric returns true for types that can be summed or averaged.
//
// Only normalized types should be given: a many2one is numeric
// only once it has been normalized to an integer.
func (t Type) IsNumeric() bool {
	return t == Integer || t == Float || t == Monetary
}

// IsDecimal returns true for numeric types holding fractional values
func (t Type) IsDecimal() bool {
	return t == Float || t == Monetary
}

// IsDateType returns true for date and datetime fields
func (t Type) IsDateType() bool {
	return t == Date || t == DateTime
}

// Normalized returns the type under which a field is handled by aggregations:
//
//   - selection fields are grouped as char
//   - many2one fields are handled as their integer foreign key
//
// Other types are returned unchanged.
func (t Type) Normalized() Type {
	switch t {
	case Selection:
		return Char
	case Many2One:
		return Integer
	}
	return t
}
