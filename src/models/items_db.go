// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, name, model_id, icon, type, value_field_id, aggregate_function,
	x_pos, y_pos, width, height, text_color, background_color, dimension_field_id,
	chart_type, datetime_granularity, list_row_limit, create_date`

// A DBItemStore is an ItemStore backed by the quickboard_item table
type DBItemStore struct {
	db        *sqlx.DB
	registry  *DBRegistry
	dateField string
}

// NewDBItemStore returns a DBItemStore on the given database.
//
// dateField is the name of the field used to filter business records
// by date when computing item data. It defaults to 'create_date'.
func NewDBItemStore(db *sqlx.DB, dateField string) *DBItemStore {
	if dateField == "" {
		dateField = "create_date"
	}
	return &DBItemStore{
		db:        db,
		registry:  NewDBRegistry(db),
		dateField: dateField,
	}
}

// List returns all items ordered by row, then column
func (s *DBItemStore) List(ctx context.Context) ([]*DashboardItem, error) {
	var items []*DashboardItem
	err := dbSelect(ctx, s.db, &items, "SELECT "+itemColumns+" FROM quickboard_item ORDER BY y_pos, x_pos, id")
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the item with the given id
func (s *DBItemStore) Get(ctx context.Context, id int64) (*DashboardItem, bool, error) {
	var item DashboardItem
	err := dbGet(ctx, s.db, &item, "SELECT "+itemColumns+" FROM quickboard_item WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &item, true, nil
}

// ReplaceAll deletes all the existing items and creates the given ones
// in a single transaction. The table is locked for the duration of the
// transaction so that concurrent calls do not interleave.
func (s *DBItemStore) ReplaceAll(ctx context.Context, items []*DashboardItem) ([]*DashboardItem, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	res := make([]*DashboardItem, len(items))
	err := inTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := dbExecute(ctx, tx, "LOCK TABLE quickboard_item IN EXCLUSIVE MODE"); err != nil {
			return err
		}
		if _, err := dbExecute(ctx, tx, "DELETE FROM quickboard_item"); err != nil {
			return err
		}
		for i, item := range items {
			var created DashboardItem
			err := dbGet(ctx, tx, &created, `
				INSERT INTO quickboard_item (name, model_id, icon, type, value_field_id, aggregate_function,
					x_pos, y_pos, width, height, text_color, background_color, dimension_field_id,
					chart_type, datetime_granularity, list_row_limit)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING `+itemColumns,
				item.Name, item.ModelID, item.Icon, string(item.Type), item.ValueFieldID, string(item.AggregateFunction),
				item.XPos, item.YPos, item.Width, item.Height, item.TextColor, item.BackgroundColor, item.DimensionFieldID,
				string(item.ChartType), item.DatetimeGranularity, item.ListRowLimit)
			if err != nil {
				return err
			}
			res[i] = &created
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes the items with the given ids
func (s *DBItemStore) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := dbExecute(ctx, s.db, "DELETE FROM quickboard_item WHERE id IN (?)", ids)
	return err
}

// UpdateLayout moves and resizes items
func (s *DBItemStore) UpdateLayout(ctx context.Context, positions []LayoutPosition) error {
	if err := validatePositions(positions); err != nil {
		return err
	}
	return inTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, p := range positions {
			_, err := dbExecute(ctx, tx,
				"UPDATE quickboard_item SET x_pos = ?, y_pos = ?, width = ?, height = ? WHERE id = ?",
				p.X, p.Y, p.W, p.H, int64(p.ID))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

var _ ItemStore = new(DBItemStore)
