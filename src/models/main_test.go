// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/hexya-erp/quickboard/src/tools/logging"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// testDB is nil when no database is available for tests
var testDB *sqlx.DB

func TestMain(m *testing.M) {
	viper.Set("LogLevel", "panic")
	if os.Getenv("QUICKBOARD_DEBUG") != "" {
		viper.Set("Debug", true)
		viper.Set("LogLevel", "debug")
		viper.Set("LogStdout", true)
	}
	logging.Initialize()

	tearDown := initializeTestDB()
	res := m.Run()
	tearDown()
	os.Exit(res)
}

// initializeTestDB connects to the database given by QUICKBOARD_TEST_DSN or
// starts a throwaway postgres container. It returns the function to call
// when tests are over.
func initializeTestDB() func() {
	ctx := context.Background()
	if dsn := os.Getenv("QUICKBOARD_TEST_DSN"); dsn != "" {
		testDB = sqlx.MustConnect("postgres", dsn)
		return func() { testDB.Close() }
	}
	container, err := startPostgres(ctx)
	if err != nil {
		fmt.Printf("No database for models tests: %s\n", err)
		testcontainers.TerminateContainer(container)
		return func() {}
	}
	terminate := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			fmt.Printf("Unable to terminate postgres container: %s\n", err)
		}
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err == nil {
		testDB, err = sqlx.ConnectContext(ctx, "postgres", dsn)
	}
	if err != nil {
		fmt.Printf("Unable to connect to postgres container: %s\n", err)
		terminate()
		return func() {}
	}
	return func() {
		testDB.Close()
		terminate()
	}
}

// startPostgres starts a postgres container. Environments without a
// container provider make testcontainers fail or panic.
func startPostgres(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("quickboard_tests"),
		postgres.WithUsername("quickboard"),
		postgres.WithPassword("quickboard"),
		postgres.BasicWaitStrategies(),
	)
}

// requireDB skips the current test if no database is available
func requireDB(t *testing.T) {
	if testDB == nil {
		t.Skip("no database available")
	}
}
