// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the tables used by Quickboard.
// ir_model and ir_model_fields hold the metadata of the business models
// and quickboard_item holds the dashboard items.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ir_model (
		id serial PRIMARY KEY,
		model varchar NOT NULL UNIQUE,
		name varchar NOT NULL DEFAULT '',
		table_name varchar NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ir_model_fields (
		id serial PRIMARY KEY,
		model_id integer NOT NULL REFERENCES ir_model (id) ON DELETE CASCADE,
		name varchar NOT NULL,
		field_description varchar NOT NULL DEFAULT '',
		ttype varchar NOT NULL,
		store boolean NOT NULL DEFAULT TRUE,
		sequence integer NOT NULL DEFAULT 0,
		UNIQUE (model_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS quickboard_item (
		id serial PRIMARY KEY,
		name varchar NOT NULL,
		model_id integer NOT NULL REFERENCES ir_model (id) ON DELETE CASCADE,
		icon varchar NOT NULL DEFAULT 'fa-square',
		type varchar NOT NULL,
		value_field_id integer NOT NULL REFERENCES ir_model_fields (id) ON DELETE CASCADE,
		aggregate_function varchar NOT NULL DEFAULT 'count',
		x_pos integer NOT NULL DEFAULT 0 CHECK (x_pos >= 0),
		y_pos integer NOT NULL DEFAULT 0 CHECK (y_pos >= 0),
		width integer NOT NULL DEFAULT 6 CHECK (width >= 0),
		height integer NOT NULL DEFAULT 1 CHECK (height >= 0),
		text_color varchar NOT NULL DEFAULT '',
		background_color varchar NOT NULL DEFAULT '',
		dimension_field_id integer REFERENCES ir_model_fields (id) ON DELETE CASCADE,
		chart_type varchar NOT NULL DEFAULT '',
		datetime_granularity varchar NOT NULL DEFAULT '',
		list_row_limit integer NOT NULL DEFAULT 0,
		create_date timestamp without time zone NOT NULL DEFAULT (now() AT TIME ZONE 'utc')
	)`,
	`CREATE INDEX IF NOT EXISTS quickboard_item_model_id_index ON quickboard_item (model_id)`,
}

// SyncDatabase creates the Quickboard tables if they do not exist yet
func SyncDatabase(ctx context.Context, db *sqlx.DB) error {
	log.Info("Updating database schema")
	return inTransaction(ctx, db, func(tx *sqlx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := dbExecute(ctx, tx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
