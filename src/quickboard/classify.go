// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package quickboard generates dashboards from the metadata of the
// selected models.
//
// Generation is a pipeline of pure functions (Classify, Synthesize and
// Arrange) driven by a Generator which resolves the result against the
// model registry and replaces the stored dashboard items.
package quickboard

import (
	"github.com/hexya-erp/quickboard/src/models"
	"github.com/hexya-erp/quickboard/src/models/fieldtype"
)

// A Classification splits the fields of an entity into fields that can
// be aggregated (value fields) and fields that can be grouped by
// (dimension fields). Both lists follow the declaration order of the fields.
type Classification struct {
	ValueFields     []string
	DimensionFields []string
	// FieldMap gives the normalized type of each classified field
	FieldMap map[string]fieldtype.Type
}

// NumericValueFields returns the value fields that can be summed or averaged
func (c Classification) NumericValueFields() []string {
	var res []string
	for _, f := range c.ValueFields {
		if c.FieldMap[f].IsNumeric() {
			res = append(res, f)
		}
	}
	return res
}

// Classify returns the Classification of the fields of the given entity.
//
// Non stored fields, x2many relations and the identifier field are left out.
func Classify(entity *models.Entity) Classification {
	res := Classification{
		FieldMap: make(map[string]fieldtype.Type),
	}
	for _, field := range entity.Fields() {
		if !field.Stored || field.Type.Is2ManyRelationType() || field.Name == models.IdentifierField {
			continue
		}
		normalized := field.Type.Normalized()
		if normalized.IsNumeric() || field.Type == fieldtype.Many2One || field.Type == fieldtype.Selection {
			res.ValueFields = append(res.ValueFields, field.Name)
		}
		if !normalized.IsDecimal() {
			res.DimensionFields = append(res.DimensionFields, field.Name)
		}
		res.FieldMap[field.Name] = normalized
	}
	return res
}
