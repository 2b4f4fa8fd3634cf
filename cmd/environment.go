// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"

	"github.com/hexya-erp/quickboard/src/bus"
	"github.com/hexya-erp/quickboard/src/models"
	"github.com/hexya-erp/quickboard/src/quickboard"
	"github.com/hexya-erp/quickboard/src/tools/logging"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

// An environment holds the storage collaborators selected by the configuration
type environment struct {
	db       *sqlx.DB
	registry models.Registry
	store    models.ItemStore
	// data is nil when running without database
	data models.ItemDataSource
}

// Close releases the resources of this environment
func (e *environment) Close() {
	if e.db == nil {
		return
	}
	if err := e.db.Close(); err != nil {
		log.Warn("Error while closing database", "error", err)
	}
}

// setupLogger initializes the logger
func setupLogger() {
	logging.Initialize()
	log = logging.GetLogger("init")
}

// connectionParams returns the database parameters from the configuration
func connectionParams() models.ConnectionParams {
	return models.ConnectionParams{
		Driver:   viper.GetString("DB.Driver"),
		Host:     viper.GetString("DB.Host"),
		Port:     viper.GetString("DB.Port"),
		User:     viper.GetString("DB.User"),
		Password: viper.GetString("DB.Password"),
		DBName:   viper.GetString("DB.Name"),
		SSLMode:  viper.GetString("DB.SSLMode"),
	}
}

// connectToDB creates the connection to the database
func connectToDB(ctx context.Context) *sqlx.DB {
	db, err := models.DBConnect(ctx, connectionParams())
	if err != nil {
		log.Panic("Unable to connect to database", "error", err)
	}
	return db
}

// openEnvironment returns the environment to work in.
//
// When Registry.File is set, models are read from this file and items are
// kept in memory. Otherwise both live in the database.
func openEnvironment(ctx context.Context) *environment {
	if file := viper.GetString("Registry.File"); file != "" {
		reg, err := models.LoadRegistryFile(file)
		if err != nil {
			log.Panic("Unable to load models file", "file", file, "error", err)
		}
		log.Info("Running without database", "models", file)
		return &environment{
			registry: reg,
			store:    models.NewMemoryItemStore(),
		}
	}
	db := connectToDB(ctx)
	store := models.NewDBItemStore(db, viper.GetString("Quickboard.DateField"))
	return &environment{
		db:       db,
		registry: models.NewDBRegistry(db),
		store:    store,
		data:     store,
	}
}

// kafkaConfig returns the Kafka publisher configuration
func kafkaConfig() bus.KafkaConfig {
	return bus.KafkaConfig{
		Brokers: viper.GetStringSlice("Bus.Kafka.Brokers"),
		Topic:   viper.GetString("Bus.Kafka.Topic"),
		Timeout: viper.GetDuration("Bus.Kafka.Timeout"),
	}
}

// setupNotifier returns the notifier of quickboard events. Events are sent
// to the given local publisher, if any, and to Kafka when brokers are
// configured. The returned function closes the notifier.
func setupNotifier(local bus.Publisher) (quickboard.Notifier, func()) {
	var publishers bus.Fanout
	if local != nil {
		publishers = append(publishers, local)
	}
	closeFnct := func() {}
	cfg := kafkaConfig()
	if len(cfg.Brokers) > 0 {
		kp, err := bus.NewKafkaPublisher(cfg)
		if err != nil {
			log.Panic("Unable to create Kafka publisher", "error", err)
		}
		log.Info("Publishing quickboard events to Kafka", "brokers", cfg.Brokers, "topic", cfg.Topic)
		publishers = append(publishers, kp)
		closeFnct = func() {
			if err := kp.Close(); err != nil {
				log.Warn("Error while closing Kafka publisher", "error", err)
			}
		}
	}
	if len(publishers) == 0 {
		return nil, closeFnct
	}
	return publishers, closeFnct
}
