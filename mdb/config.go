package mdb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Defaults applied by Connect to unset Config fields.
var (
	DefaultURI = "mongodb://localhost:27017"

	DefaultConnectTimeout    = 10 * time.Second
	DefaultDisconnectTimeout = 10 * time.Second
	DefaultPingTimeout       = 2 * time.Second
	DefaultCollectionTimeout = time.Second
	DefaultIndexTimeout      = 5 * time.Second
)

// Config for an Access object.
// The zero value is usable, see fixConfig for the defaults.
type Config struct {
	// Ctx is the parent of every context derived by Access and Collection.
	Ctx context.Context

	// Options for the driver client, DefaultURI is applied when nil.
	Options *options.ClientOptions

	// Registry replaces the driver's BSON codec registry when set.
	Registry *bsoncodec.Registry

	// Logger receives connection and collection messages.
	// Errors are returned, not logged.
	Logger *zap.Logger

	Timeout
}

// Timeout for each kind of blocking call made by Access.
type Timeout struct {
	Connect    time.Duration
	Disconnect time.Duration
	Ping       time.Duration
	Collection time.Duration
	Index      time.Duration
}

func (t Timeout) withDefaults() Timeout {
	return Timeout{
		Connect:    orDefault(t.Connect, DefaultConnectTimeout),
		Disconnect: orDefault(t.Disconnect, DefaultDisconnectTimeout),
		Ping:       orDefault(t.Ping, DefaultPingTimeout),
		Collection: orDefault(t.Collection, DefaultCollectionTimeout),
		Index:      orDefault(t.Index, DefaultIndexTimeout),
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

func fixConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	if config.Ctx == nil {
		config.Ctx = context.Background()
	}
	if config.Options == nil {
		config.Options = options.Client().ApplyURI(DefaultURI)
	}
	if config.Registry != nil {
		config.Options.SetRegistry(config.Registry)
	}
	if config.Logger == nil {
		config.Logger = zap.L().Named("mdb")
	}
	config.Timeout = config.Timeout.withDefaults()
	return config
}
