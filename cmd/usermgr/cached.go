package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/cache"
	"github.com/madkins23/mongo-users/config"
	"github.com/madkins23/mongo-users/mdbconf"
	"github.com/madkins23/mongo-users/user"
)

// cachedConnector wraps the stores handed out by the connector with the cache.
func cachedConnector(connector user.Connector, c cache.Cache, cfg *config.Config, log *zap.Logger) user.Connector {
	return user.ConnectorFunc(func(ctx context.Context, conn *mdbconf.Connection) (user.Store, error) {
		store, err := connector.Connect(ctx, conn)
		if err != nil {
			return nil, err
		}
		return user.NewCachedStore(store, c, cfg.Cache.TTL, log.Named("cache")), nil
	})
}
