// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"fmt"
	"time"

	"github.com/hexya-erp/quickboard/src/tools/exceptions"
	"github.com/hexya-erp/quickboard/src/tools/nbutils"
	"github.com/lib/pq"
)

// valuePrecision is the precision at which item values are rounded
var valuePrecision = nbutils.Digits{Precision: 16, Scale: 2}.ToPrecision()

// granularities maps the accepted datetime granularities to date_trunc fields
var granularities = map[string]string{
	"day":     "day",
	"week":    "week",
	"month":   "month",
	"quarter": "quarter",
	"year":    "year",
}

// A DateRange restricts the business records taken into account.
// Both bounds are inclusive dates. A zero bound is not applied.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// An ItemDataRow is one line of a list item
type ItemDataRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ItemData holds the figures displayed by a dashboard item
type ItemData struct {
	ItemID int64         `json:"item_id"`
	Type   ItemType      `json:"type"`
	Value  float64       `json:"value"`
	Labels []string      `json:"labels,omitempty"`
	Values []float64     `json:"values,omitempty"`
	Rows   []ItemDataRow `json:"rows,omitempty"`
}

// An ItemDataSource computes the data of dashboard items
type ItemDataSource interface {
	ItemData(ctx context.Context, itemID int64, dates DateRange) (*ItemData, error)
}

type labelValue struct {
	Label string  `db:"label"`
	Value float64 `db:"value"`
}

// ItemData computes the data of the item with the given id from the
// records of its entity's table.
func (s *DBItemStore) ItemData(ctx context.Context, itemID int64, dates DateRange) (*ItemData, error) {
	item, ok, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exceptions.ValidationError{Message: fmt.Sprintf("Quickboard item %d does not exist", itemID)}
	}
	entity, ok, err := s.registry.Entity(ctx, item.ModelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exceptions.ValidationError{Message: fmt.Sprintf("Model %d of item %d does not exist", item.ModelID, itemID)}
	}
	valueField, ok := entity.FieldByID(item.ValueFieldID)
	if !ok {
		return nil, exceptions.ValidationError{Message: fmt.Sprintf("Value field of item '%s' does not exist", item.Name)}
	}
	aggregate, err := aggregateSQL(item.AggregateFunction, valueField.Name)
	if err != nil {
		return nil, err
	}
	where, args := s.dateFilterSQL(entity, dates)
	table := pq.QuoteIdentifier(entity.TableName())
	res := &ItemData{ItemID: item.ID, Type: item.Type}

	if !item.Type.NeedsDimension() {
		var value float64
		query := fmt.Sprintf("SELECT COALESCE(%s, 0) FROM %s%s", aggregate, table, where)
		if err := dbGet(ctx, s.db, &value, query, args...); err != nil {
			return nil, err
		}
		res.Value = nbutils.MustRound(value, valuePrecision)
		return res, nil
	}

	if item.DimensionFieldID == nil {
		return nil, exceptions.ValidationError{Message: fmt.Sprintf("Item '%s' has no dimension field", item.Name)}
	}
	dimField, ok := entity.FieldByID(*item.DimensionFieldID)
	if !ok {
		return nil, exceptions.ValidationError{Message: fmt.Sprintf("Dimension field of item '%s' does not exist", item.Name)}
	}
	dimension := pq.QuoteIdentifier(dimField.Name)
	if dimField.Type.IsDateType() {
		granularity, ok := granularities[item.DatetimeGranularity]
		if !ok {
			granularity = "month"
		}
		dimension = fmt.Sprintf("date_trunc('%s', %s)::date", granularity, dimension)
	}
	query := fmt.Sprintf("SELECT COALESCE(%s::text, '') AS label, COALESCE(%s, 0) AS value FROM %s%s GROUP BY 1",
		dimension, aggregate, table, where)
	switch item.Type {
	case ItemChart:
		query += " ORDER BY 1"
	case ItemList:
		limit := item.ListRowLimit
		if limit <= 0 {
			limit = 10
		}
		query += fmt.Sprintf(" ORDER BY 2 DESC, 1 LIMIT %d", limit)
	}
	var rows []labelValue
	if err := dbSelect(ctx, s.db, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		value := nbutils.MustRound(row.Value, valuePrecision)
		switch item.Type {
		case ItemChart:
			res.Labels = append(res.Labels, row.Label)
			res.Values = append(res.Values, value)
		case ItemList:
			res.Rows = append(res.Rows, ItemDataRow{Label: row.Label, Value: value})
		}
	}
	return res, nil
}

// aggregateSQL returns the SQL expression of the given aggregate function on the given column
func aggregateSQL(function AggregateFunction, column string) (string, error) {
	col := pq.QuoteIdentifier(column)
	switch function {
	case AggregateCount:
		return fmt.Sprintf("COUNT(%s)::float8", col), nil
	case AggregateSum:
		return fmt.Sprintf("SUM(%s)::float8", col), nil
	case AggregateAvg:
		return fmt.Sprintf("AVG(%s)::float8", col), nil
	}
	return "", exceptions.ValidationError{Message: fmt.Sprintf("Unknown aggregate function '%s'", function)}
}

// dateFilterSQL returns the WHERE clause restricting records of the given entity
// to the given dates, or an empty string if the entity has no stored date field.
func (s *DBItemStore) dateFilterSQL(entity *Entity, dates DateRange) (string, []interface{}) {
	field, ok := entity.Field(s.dateField)
	if !ok || !field.Stored || !field.Type.IsDateType() {
		return "", nil
	}
	col := pq.QuoteIdentifier(field.Name)
	var (
		conds []string
		args  []interface{}
	)
	if !dates.Start.IsZero() {
		conds = append(conds, col+" >= ?")
		args = append(args, dates.Start.Format("2006-01-02"))
	}
	if !dates.End.IsZero() {
		conds = append(conds, col+" < ?")
		args = append(args, dates.End.AddDate(0, 0, 1).Format("2006-01-02"))
	}
	switch len(conds) {
	case 0:
		return "", nil
	case 1:
		return " WHERE " + conds[0], args
	}
	return " WHERE " + conds[0] + " AND " + conds[1], args
}

var _ ItemDataSource = new(DBItemStore)
