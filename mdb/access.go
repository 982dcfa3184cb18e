package mdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/mdbconf"
)

// Access holds a connected client and the database it was opened for.
type Access struct {
	client   *mongo.Client
	database *mongo.Database
	config   Config
}

var ErrNoDbName = errors.New("no database name")

// Connect opens a client, selects the named database and pings the server.
// A nil config, or any unset part of it, gets the package defaults.
func Connect(dbName string, config *Config) (*Access, error) {
	if dbName == "" {
		return nil, ErrNoDbName
	}

	config = fixConfig(config)
	ctx, cancel := context.WithTimeout(config.Ctx, config.Timeout.Connect)
	defer cancel()
	client, err := mongo.Connect(ctx, config.Options)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", dbName, err)
	}

	access := &Access{client: client, database: client.Database(dbName), config: *config}
	if err := access.Ping(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	access.Info("Connected", zap.String("database", dbName))
	return access, nil
}

// ConnectTo works like Connect with client options and database name taken from a built connection.
func ConnectTo(conn *mdbconf.Connection, config *Config) (*Access, error) {
	cfg, err := connectionConfig(conn, config)
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("Connecting", zap.Stringer("connection", conn))
	}

	return Connect(conn.Database(), cfg)
}

// connectionConfig copies the config with the connection's client options.
// The driver selects a server on the first operation, which is the ping,
// so an unset ping timeout gets the server selection timeout.
func connectionConfig(conn *mdbconf.Connection, config *Config) (*Config, error) {
	opts, err := conn.ClientOptions()
	if err != nil {
		return nil, fmt.Errorf("client options: %w", err)
	}

	var cfg Config
	if config != nil {
		cfg = *config
	}
	cfg.Options = opts
	if cfg.Timeout.Ping == 0 {
		cfg.Timeout.Ping = conn.ServerSelectionTimeout()
	}
	return &cfg, nil
}

// ConnectOrPanic is Connect for programs that cannot continue without the database.
func ConnectOrPanic(dbName string, config *Config) *Access {
	access, err := Connect(dbName, config)
	if err != nil {
		panic(err)
	}
	return access
}

// Disconnect closes the client.
func (a *Access) Disconnect() error {
	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Disconnect)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

func (a *Access) Client() *mongo.Client {
	return a.client
}

// Context returns the base context from the config.
func (a *Access) Context() context.Context {
	return a.config.Ctx
}

func (a *Access) ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(a.config.Ctx, timeout)
}

func (a *Access) Database() *mongo.Database {
	return a.database
}

// Ping checks that the server answers.
// A nil read preference means the client's own, so secondary-only configurations still work.
func (a *Access) Ping() error {
	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Ping)
	defer cancel()
	if err := a.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (a *Access) Info(msg string, fields ...zap.Field) {
	a.config.Logger.Info(msg, fields...)
}

func (a *Access) Logger() *zap.Logger {
	return a.config.Logger
}
