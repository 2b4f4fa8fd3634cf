// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"strings"

	"github.com/hexya-erp/quickboard/src/models/fieldtype"
)

// IdentifierField is the name of the primary key field of every entity
const IdentifierField = "id"

// A Field holds the metadata of one field of an entity
type Field struct {
	ID          int64          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"field_description" json:"description"`
	Type        fieldtype.Type `db:"ttype" json:"type"`
	Stored      bool           `db:"store" json:"stored"`
}

// An Entity describes a queryable model with its fields
// in declaration order.
type Entity struct {
	ID          int64
	Name        string
	Description string
	Table       string
	fields      []*Field
	fieldsByKey map[string]*Field
}

// NewEntity returns a new Entity with the given name and fields.
// Fields are kept in the given order.
func NewEntity(name string, fields ...*Field) *Entity {
	e := &Entity{
		Name:        name,
		fieldsByKey: make(map[string]*Field),
	}
	for _, f := range fields {
		e.AddField(f)
	}
	return e
}

// AddField appends the given field to this entity.
// A field with the same name replaces the previous one at its position.
func (e *Entity) AddField(f *Field) {
	if e.fieldsByKey == nil {
		e.fieldsByKey = make(map[string]*Field)
	}
	if _, exists := e.fieldsByKey[f.Name]; exists {
		for i, ef := range e.fields {
			if ef.Name == f.Name {
				e.fields[i] = f
			}
		}
		e.fieldsByKey[f.Name] = f
		return
	}
	e.fields = append(e.fields, f)
	e.fieldsByKey[f.Name] = f
}

// Fields returns the fields of this entity in declaration order
func (e *Entity) Fields() []*Field {
	res := make([]*Field, len(e.fields))
	copy(res, e.fields)
	return res
}

// Field returns the field with the given name
func (e *Entity) Field(name string) (*Field, bool) {
	f, ok := e.fieldsByKey[name]
	return f, ok
}

// FieldByID returns the field with the given durable identifier
func (e *Entity) FieldByID(id int64) (*Field, bool) {
	for _, f := range e.fields {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// HasIdentifier returns true if this entity has a stored 'id' field
// that records can be counted on.
func (e *Entity) HasIdentifier() bool {
	f, ok := e.fieldsByKey[IdentifierField]
	return ok && f.Stored
}

// TableName returns the SQL table of this entity.
func (e *Entity) TableName() string {
	if e.Table != "" {
		return e.Table
	}
	return strings.Replace(e.Name, ".", "_", -1)
}
