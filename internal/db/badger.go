package db

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/yigit/coursebot/internal/config"
)

// NewBadgerDB opens the embedded store configured in cfg.Database.
// With in_memory set nothing is written to disk.
func NewBadgerDB(cfg *config.Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Database.BadgerPath)
	if cfg.Database.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.ERROR)

	database, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return database, nil
}
