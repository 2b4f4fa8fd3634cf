// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// A DBRegistry is a Registry that reads entities from the
// ir_model and ir_model_fields tables.
type DBRegistry struct {
	db *sqlx.DB
}

// NewDBRegistry returns a DBRegistry reading from the given database
func NewDBRegistry(db *sqlx.DB) *DBRegistry {
	return &DBRegistry{db: db}
}

type modelRow struct {
	ID        int64  `db:"id"`
	Model     string `db:"model"`
	Name      string `db:"name"`
	TableName string `db:"table_name"`
}

// loadEntity builds an Entity from the given model row and its fields
func (r *DBRegistry) loadEntity(ctx context.Context, row modelRow) (*Entity, error) {
	var fields []*Field
	err := dbSelect(ctx, r.db, &fields, `
		SELECT id, name, field_description, ttype, store
		FROM ir_model_fields
		WHERE model_id = ?
		ORDER BY sequence, id`, row.ID)
	if err != nil {
		return nil, err
	}
	e := NewEntity(row.Model, fields...)
	e.ID = row.ID
	e.Description = row.Name
	e.Table = row.TableName
	return e, nil
}

func (r *DBRegistry) entityWhere(ctx context.Context, where string, arg interface{}) (*Entity, bool, error) {
	var row modelRow
	err := dbGet(ctx, r.db, &row, "SELECT id, model, name, table_name FROM ir_model WHERE "+where, arg)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, err := r.loadEntity(ctx, row)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Entity returns the entity with the given id
func (r *DBRegistry) Entity(ctx context.Context, id int64) (*Entity, bool, error) {
	return r.entityWhere(ctx, "id = ?", id)
}

// EntityByName returns the entity with the given name
func (r *DBRegistry) EntityByName(ctx context.Context, name string) (*Entity, bool, error) {
	return r.entityWhere(ctx, "model = ?", name)
}

// FieldID returns the durable identifier of the given field of the given entity
func (r *DBRegistry) FieldID(ctx context.Context, modelID int64, fieldName string) (int64, bool, error) {
	var id int64
	err := dbGet(ctx, r.db, &id, "SELECT id FROM ir_model_fields WHERE model_id = ? AND name = ?", modelID, fieldName)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Entities returns all the entities of the database ordered by id
func (r *DBRegistry) Entities(ctx context.Context) ([]*Entity, error) {
	var rows []modelRow
	if err := dbSelect(ctx, r.db, &rows, "SELECT id, model, name, table_name FROM ir_model ORDER BY id"); err != nil {
		return nil, err
	}
	res := make([]*Entity, len(rows))
	for i, row := range rows {
		e, err := r.loadEntity(ctx, row)
		if err != nil {
			return nil, err
		}
		res[i] = e
	}
	return res, nil
}

// ImportEntities inserts or updates the given entities and their fields
// in the ir_model and ir_model_fields tables. Field sequences follow the
// declaration order. The ids of the given entities are not used.
func (r *DBRegistry) ImportEntities(ctx context.Context, entities []*Entity) error {
	return inTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, e := range entities {
			var modelID int64
			err := dbGet(ctx, tx, &modelID, `
				INSERT INTO ir_model (model, name, table_name) VALUES (?, ?, ?)
				ON CONFLICT (model) DO UPDATE SET name = EXCLUDED.name, table_name = EXCLUDED.table_name
				RETURNING id`, e.Name, e.Description, e.TableName())
			if err != nil {
				return err
			}
			for seq, f := range e.Fields() {
				_, err := dbExecute(ctx, tx, `
					INSERT INTO ir_model_fields (model_id, name, field_description, ttype, store, sequence)
					VALUES (?, ?, ?, ?, ?, ?)
					ON CONFLICT (model_id, name) DO UPDATE SET
						field_description = EXCLUDED.field_description,
						ttype = EXCLUDED.ttype,
						store = EXCLUDED.store,
						sequence = EXCLUDED.sequence`,
					modelID, f.Name, f.Description, string(f.Type), f.Stored, seq)
				if err != nil {
					return err
				}
			}
			log.Debug("Entity imported", "model", e.Name, "id", modelID, "fields", len(e.fields))
		}
		return nil
	})
}

var _ Registry = new(DBRegistry)
