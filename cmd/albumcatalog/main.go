// Album Catalog - authenticated music catalog service
//
// This is the main entry point for the album catalog server. It loads
// configuration, opens the selected relational store, wires the
// authentication and authorisation services into the HTTP API and waits
// for a shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/album-catalog/migrations"

	"github.com/nerrad567/album-catalog/internal/album"
	"github.com/nerrad567/album-catalog/internal/api"
	"github.com/nerrad567/album-catalog/internal/auth"
	"github.com/nerrad567/album-catalog/internal/events"
	"github.com/nerrad567/album-catalog/internal/infrastructure/config"
	"github.com/nerrad567/album-catalog/internal/infrastructure/database"
	"github.com/nerrad567/album-catalog/internal/infrastructure/influxdb"
	"github.com/nerrad567/album-catalog/internal/infrastructure/logging"
	"github.com/nerrad567/album-catalog/internal/infrastructure/mqtt"
	"github.com/nerrad567/album-catalog/internal/infrastructure/postgres"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// store bundles the repositories for the configured driver.
type store struct {
	users  auth.UserRepository
	albums album.Repository
	db     api.Database
	close  func() error
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting album catalog",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)
	if cfg.Security.JWT.Secret == config.DevelopmentJWTSecret {
		log.Warn("using the development token secret; set ALBUMCATALOG_JWT_SECRET before exposing this server")
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := st.close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret: cfg.Security.JWT.Secret,
		TTL:    cfg.GetTokenTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}
	hasher := auth.NewHasher(auth.DefaultArgon2Params)

	if cfg.Security.SeedAdmin.Enabled {
		if _, seedErr := auth.SeedAdmin(ctx, st.users, hasher, cfg.Security.SeedAdmin.Username, log.Logger); seedErr != nil {
			return fmt.Errorf("seeding admin: %w", seedErr)
		}
	}

	hub := api.NewHub(cfg.WebSocket, log)
	dispatcher := events.NewDispatcher()
	dispatcher.Add("websocket", hub)

	deps := api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Logger:        log,
		Authenticator: auth.NewAuthenticator(st.users, hasher, codec),
		Resolver:      auth.NewSessionResolver(codec, st.users),
		Albums:        album.NewService(st.albums, st.users, dispatcher, log.Logger),
		Users:         auth.NewUserAdmin(st.users, dispatcher, log.Logger),
		DB:            st.db,
		AlbumCounter:  st.albums,
		UserCounter:   st.users,
		Hub:           hub,
		Version:       version,
	}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		dispatcher.Add("mqtt", events.NewMQTTSink(mqttClient, mqttClient.Topics(), mqttClient.QoS()))
		deps.MQTT = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		dispatcher.Add("influxdb", events.NewInfluxSink(influxClient))
		deps.RequestMetrics = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal", "addr", server.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("album catalog stopped")
	return nil
}

// openStore opens the configured database, applies migrations and returns
// the matching repositories.
func openStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database connected", "driver", config.DriverPostgres)
		return &store{
			users:  auth.NewPostgresUserRepository(db.DB),
			albums: album.NewPostgresRepository(db.DB),
			db:     db,
			close:  db.Close,
		}, nil

	default:
		db, err := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database connected", "driver", config.DriverSQLite, "path", cfg.Database.Path)
		return &store{
			users:  auth.NewUserRepository(db.DB),
			albums: album.NewSQLiteRepository(db.DB),
			db:     db,
			close:  db.Close,
		}, nil
	}
}

// getConfigPath returns the configuration file path.
// Uses ALBUMCATALOG_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ALBUMCATALOG_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
