package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/config"
	"github.com/madkins23/mongo-users/logger"
	"github.com/madkins23/mongo-users/mdb"
)

const defaultCollection = "someTable"

type probeDoc struct {
	Very string `bson:"very"`
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "tlsprobe",
		Usage:     "insert and query one document to prove a MongoDB connection works",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML configuration `FILE`"},
			&cli.StringFlag{Name: "env-file", Usage: "load environment variables from `FILE`"},
			&cli.StringFlag{Name: "collection", Value: defaultCollection, Usage: "collection `NAME` to write to"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(config.Options{EnvFile: c.String("env-file"), YAMLFile: c.String("config")})
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return probe(c.Context, out, cfg, c.String("collection"), log)
		},
	}
}

// probe connects, writes {"very": "important"} and prints the value of every matching document.
func probe(ctx context.Context, out io.Writer, cfg *config.Config, collection string, log *zap.Logger) error {
	conn, err := cfg.Connection()
	if err != nil {
		return err
	}
	log.Info("Connecting", zap.Stringer("connection", conn))

	access, err := mdb.ConnectTo(conn, &mdb.Config{Ctx: ctx, Logger: log.Named("mdb")})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := access.Disconnect(); err != nil {
			log.Warn("Disconnect failed", zap.Error(err))
		}
	}()

	docs, err := mdb.ConnectTypedCollection[probeDoc](access, &mdb.CollectionDefinition{Name: collection})
	if err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}

	filter := bson.D{{Key: "very", Value: "important"}}
	id, err := docs.Create(ctx, filter)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	log.Debug("Inserted", zap.Any("id", id))

	return docs.Iterate(ctx, filter, func(doc *probeDoc) error {
		_, err := fmt.Fprintln(out, doc.Very)
		return err
	})
}
