// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ConnectionParams are the parameters to connect to the database
type ConnectionParams struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ConnectionString returns the postgres connection string for these parameters.
// Empty parameters are left out so that libpq defaults apply.
func (p ConnectionParams) ConnectionString() string {
	connectString := fmt.Sprintf("dbname=%s", p.DBName)
	if p.SSLMode != "" {
		connectString += fmt.Sprintf(" sslmode=%s", p.SSLMode)
	}
	if p.User != "" {
		connectString += fmt.Sprintf(" user=%s", p.User)
	}
	if p.Password != "" {
		connectString += fmt.Sprintf(" password=%s", p.Password)
	}
	if p.Host != "" {
		connectString += fmt.Sprintf(" host=%s", p.Host)
	}
	if p.Port != "" && p.Port != "5432" {
		connectString += fmt.Sprintf(" port=%s", p.Port)
	}
	return connectString
}

// DBConnect connects to a database with the given parameters.
func DBConnect(ctx context.Context, params ConnectionParams) (*sqlx.DB, error) {
	driver := params.Driver
	if driver == "" {
		driver = "postgres"
	}
	db, err := sqlx.ConnectContext(ctx, driver, params.ConnectionString())
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to database %s", params.DBName)
	}
	log.Info("Connected to database", "driver", driver, "dbname", params.DBName, "host", params.Host)
	return db, nil
}

// dbExecute executes a query that returns no row
func dbExecute(ctx context.Context, ex sqlx.ExtContext, query string, args ...interface{}) (sql.Result, error) {
	query, args, err := sanitizeQuery(ex, query, args...)
	if err != nil {
		return nil, err
	}
	t := time.Now()
	res, err := ex.ExecContext(ctx, query, args...)
	logSQLResult(err, t, query, args...)
	return res, errors.Wrap(err, "unable to execute query")
}

// dbGet gets the value of a single row found by the given query and arguments.
// It returns sql.ErrNoRows unwrapped when the query returns no row.
func dbGet(ctx context.Context, ex sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sanitizeQuery(ex, query, args...)
	if err != nil {
		return err
	}
	t := time.Now()
	err = sqlx.GetContext(ctx, ex, dest, query, args...)
	if err == sql.ErrNoRows {
		logSQLResult(nil, t, query, args...)
		return err
	}
	logSQLResult(err, t, query, args...)
	return errors.Wrap(err, "unable to get row")
}

// dbSelect gets the values of multiple rows found by the given query and arguments.
// dest must be a slice.
func dbSelect(ctx context.Context, ex sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	query, args, err := sanitizeQuery(ex, query, args...)
	if err != nil {
		return err
	}
	t := time.Now()
	err = sqlx.SelectContext(ctx, ex, dest, query, args...)
	logSQLResult(err, t, query, args...)
	return errors.Wrap(err, "unable to select rows")
}

// sanitizeQuery calls 'In' expansion and 'Rebind' on the given query and
// returns the new values to use.
func sanitizeQuery(ex sqlx.ExtContext, query string, args ...interface{}) (string, []interface{}, error) {
	q, newArgs, err := sqlx.In(query, args...)
	if err != nil {
		log.Error("Unable to expand 'IN' statement", "error", err, "query", query, "args", args)
		return "", nil, errors.Wrap(err, "unable to expand 'IN' statement")
	}
	return ex.Rebind(q), newArgs, nil
}

// logSQLResult logs the result of the given sql query started at start time
// with the given args and error.
func logSQLResult(err error, start time.Time, query string, args ...interface{}) {
	logCtx := log.New("query", query, "args", args, "duration", time.Since(start))
	if err != nil {
		logCtx.Error("Error while executing query", "error", err)
		return
	}
	logCtx.Debug("Query executed")
}

// inTransaction runs fnct inside a transaction that is committed
// if fnct returns nil and rolled back otherwise.
func inTransaction(ctx context.Context, db *sqlx.DB, fnct func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Warn("Unable to rollback transaction", "error", rbErr)
			}
			return
		}
		err = errors.Wrap(tx.Commit(), "unable to commit transaction")
	}()
	err = fnct(tx)
	return
}
