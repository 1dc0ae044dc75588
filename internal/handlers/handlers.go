package handlers

import (
	"time"

	"media-broker/internal/broker"
	"media-broker/internal/converter"
	"media-broker/internal/database"
	"media-broker/internal/startup"
)

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	broker    *broker.Broker
	conv      *converter.Converter
	db        *database.Database
	config    *startup.Config
	startTime time.Time
}

// New creates a Handlers instance.
func New(b *broker.Broker, conv *converter.Converter, db *database.Database, config *startup.Config) *Handlers {
	return &Handlers{
		broker:    b,
		conv:      conv,
		db:        db,
		config:    config,
		startTime: time.Now(),
	}
}
