package main

import (
	"github.com/joho/godotenv"

	"github.com/wfunc/roomserver/config"
	"github.com/wfunc/roomserver/game"
	"github.com/wfunc/roomserver/hanabi"
	"github.com/wfunc/roomserver/logger"
	"github.com/wfunc/roomserver/persistence"
	"github.com/wfunc/roomserver/server"
	"github.com/wfunc/roomserver/services"
)

func main() {
	// Local overrides for the viper env lookups; missing file is fine.
	godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Init(false)
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Log.Development)

	registry := game.NewRegistry()
	registry.Register("hanabi", hanabi.New)

	ctor, err := registry.Lookup(cfg.Game.Type)
	if err != nil {
		logger.Log.Fatalf("Failed to select game: %v", err)
	}

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Game.Type, ctor)
	gameServer.EnableMonitor("roomserver", cfg.Server.MonitorAddress)

	records := openRecordService(cfg)
	if records != nil {
		gameServer.EnableRecords(records)
	}

	if err := gameServer.EnableRPC(cfg.Server.RPCAddress, records); err != nil {
		logger.Log.Fatalf("Failed to start RPC server: %v", err)
	}

	logger.Log.Infof("Starting %s server on %s", cfg.Game.Type, cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

// openRecordService wires the finished-game archive when a database
// driver is configured. The server runs fine without one.
func openRecordService(cfg *config.Config) *services.RecordService {
	var (
		store persistence.Store
		err   error
	)
	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "":
		return nil
	case "postgres":
		store, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "gorm":
		store, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		logger.Log.Fatalf("Unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")
	return services.NewRecordService(store)
}
