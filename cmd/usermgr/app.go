package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/config"
	"github.com/madkins23/mongo-users/logger"
	"github.com/madkins23/mongo-users/mdb"
	"github.com/madkins23/mongo-users/mdbconf"
	"github.com/madkins23/mongo-users/mdbson"
	"github.com/madkins23/mongo-users/user"
)

// errReported marks failures whose messages were already printed.
var errReported = errors.New("failure reported")

// connectorFn returns the connector used for the non-memory store.
type connectorFn func(cfg *config.Config, log *zap.Logger) user.Connector

func mongoConnector(_ *config.Config, log *zap.Logger) user.Connector {
	return &user.MongoConnector{Config: mdb.Config{Logger: log.Named("mdb")}}
}

type runner struct {
	out        io.Writer
	connector  connectorFn
	log        *zap.Logger
	manager    *user.Manager
	closeCache func() error
}

var opUsage = map[user.Op]string{
	user.OpCreate: "create a new account",
	user.OpFetch:  "show an account",
	user.OpUpdate: "change fields of an account",
	user.OpDelete: "delete an account",
}

func newApp(out io.Writer, connector connectorFn) *cli.App {
	r := &runner{out: out, connector: connector, log: zap.NewNop()}
	commands := make([]*cli.Command, 0, len(user.Ops()))
	for _, op := range user.Ops() {
		// Connecting per command keeps --help and missing flag errors off the network.
		commands = append(commands, &cli.Command{
			Name:   op.String(),
			Usage:  opUsage[op],
			Flags:  opFlags(op),
			Before: r.setup,
			After:  r.teardown,
			Action: r.run,
		})
	}
	return &cli.App{
		Name:      "usermgr",
		Usage:     "manage user accounts stored in MongoDB",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML configuration `FILE`"},
			&cli.StringFlag{Name: "env-file", Usage: "load environment variables from `FILE`"},
			&cli.BoolFlag{Name: "memory", Usage: "use a throwaway in-memory store instead of MongoDB"},
		},
		Commands: commands,
	}
}

func opFlags(op user.Op) []cli.Flag {
	switch op {
	case user.OpCreate:
		return []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"USERMGR_PASSWORD"}},
			&cli.StringFlag{Name: "email", Required: true},
		}
	case user.OpUpdate:
		return []cli.Flag{
			&cli.StringFlag{Name: "guid", Required: true},
			&cli.StringFlag{Name: "name", Usage: "full name"},
			&cli.StringFlag{Name: "password", EnvVars: []string{"USERMGR_PASSWORD"}},
			&cli.StringFlag{Name: "email"},
			&cli.StringSliceFlag{Name: "phone", Usage: "phone number as `LABEL=NUMBER`, repeatable"},
		}
	default:
		return []cli.Flag{
			&cli.StringFlag{Name: "guid"},
			&cli.StringFlag{Name: "email"},
		}
	}
}

// setup loads the configuration and connects the manager before the command runs.
func (r *runner) setup(c *cli.Context) error {
	cfg, err := config.Load(config.Options{EnvFile: c.String("env-file"), YAMLFile: c.String("config")})
	if err != nil {
		return err
	}
	if r.log, err = logger.New(cfg.Log); err != nil {
		return err
	}
	conn, err := cfg.Connection()
	if err != nil {
		return r.report("Invalid connection configuration!", err)
	}

	var connector user.Connector
	if c.Bool("memory") {
		connector = user.StoreConnector(user.NewMemoryStore())
	} else {
		connector = r.connector(cfg, r.log)
	}

	cache, closeCache, err := cfg.OpenCache(c.Context)
	if err != nil {
		return r.report("Could not open the cache!", err)
	}
	r.closeCache = closeCache
	if cache != nil {
		connector = cachedConnector(connector, cache, cfg, r.log)
	}

	r.manager = user.NewManager(connector, user.WithLogger(r.log.Named("user")))
	result := r.manager.Connect(c.Context, conn)
	if !result.Success {
		return r.failed("Could not connect to MongoDB!", result)
	}
	fmt.Fprintln(r.out, "Successfully connected to MongoDB!")
	return nil
}

// run dispatches the command to the matching operation.
func (r *runner) run(c *cli.Context) error {
	op, err := user.ParseOp(c.Command.Name)
	if err != nil {
		return err
	}
	switch op {
	case user.OpCreate:
		return r.create(c)
	case user.OpFetch:
		return r.fetch(c)
	case user.OpUpdate:
		return r.update(c)
	case user.OpDelete:
		return r.delete(c)
	}
	return fmt.Errorf("no action for %s", op)
}

func (r *runner) teardown(c *cli.Context) error {
	var errs []error
	if r.manager != nil {
		errs = append(errs, r.manager.Close(context.WithoutCancel(c.Context)))
	}
	if r.closeCache != nil {
		errs = append(errs, r.closeCache())
	}
	_ = r.log.Sync()
	return errors.Join(errs...)
}

func (r *runner) create(c *cli.Context) error {
	candidate := user.NewUser{
		Username: c.String("username"),
		Password: c.String("password"),
		Email:    c.String("email"),
	}
	hash, result := r.manager.ValidateNewUserData(c.Context, candidate)
	if !result.Success {
		return r.failed("New user data failed validation!", result)
	}
	result = r.manager.AddUser(c.Context, candidate.Record(hash))
	if !result.Success {
		return r.failed("Create new user request failed!", result)
	}
	return r.succeeded(fmt.Sprintf("User %s account was successfully created!", candidate.Username), result)
}

func (r *runner) fetch(c *cli.Context) error {
	key, err := keyFrom(c)
	if err != nil {
		return r.report("Fetch user request failed!", err)
	}
	rec, result := r.manager.FetchUser(c.Context, key)
	if !result.Success {
		return r.failed(fmt.Sprintf("Fetch user %s request failed!", key.Value()), result)
	}
	shown := rec.Clone()
	shown.Password = "*****"
	dump, err := mdbson.Dump(shown)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "User %s record was successfully fetched!\n", key.Value())
	fmt.Fprintln(r.out, dump)
	return nil
}

func (r *runner) update(c *cli.Context) error {
	var upd user.Update
	if c.IsSet("name") {
		name := c.String("name")
		upd.FullName = &name
	}
	if c.IsSet("password") {
		password := c.String("password")
		upd.Password = &password
	}
	if c.IsSet("email") {
		email := c.String("email")
		upd.Email = &email
	}
	if c.IsSet("phone") {
		phones, err := parsePhones(c.StringSlice("phone"))
		if err != nil {
			return r.report(fmt.Sprintf("Update user GUID: %s request failed!", c.String("guid")), err)
		}
		upd.Phones = phones
	}
	guid := c.String("guid")
	result := r.manager.UpdateUser(c.Context, guid, upd)
	if !result.Success {
		return r.failed(fmt.Sprintf("Update user GUID: %s request failed!", guid), result)
	}
	return r.succeeded(fmt.Sprintf("User GUID: %s record was successfully updated!", guid), result)
}

func (r *runner) delete(c *cli.Context) error {
	key, err := keyFrom(c)
	if err != nil {
		return r.report("Delete user request failed!", err)
	}
	result := r.manager.DeleteUser(c.Context, key)
	if !result.Success {
		return r.failed(fmt.Sprintf("Delete user: %s request has failed!", key.Value()), result)
	}
	return r.succeeded(fmt.Sprintf("Delete user: %s request has succeeded!", key.Value()), result)
}

var errKeyFlags = errors.New("exactly one of --guid or --email is required")

func keyFrom(c *cli.Context) (user.Key, error) {
	guid, email := c.String("guid"), c.String("email")
	switch {
	case guid != "" && email == "":
		return user.ByGUID(guid), nil
	case email != "" && guid == "":
		return user.ByEmail(email), nil
	}
	return user.Key{}, errKeyFlags
}

func parsePhones(values []string) (map[string]string, error) {
	phones := make(map[string]string, len(values))
	for _, value := range values {
		label, number, found := strings.Cut(value, "=")
		label, number = strings.TrimSpace(label), strings.TrimSpace(number)
		if !found || label == "" || number == "" {
			return nil, fmt.Errorf("phone %q is not LABEL=NUMBER", value)
		}
		phones[label] = number
	}
	return phones, nil
}

func (r *runner) succeeded(message string, result *user.Result) error {
	fmt.Fprintln(r.out, message)
	dump, err := mdbson.Dump(result.Info)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, dump)
	return nil
}

func (r *runner) failed(message string, result *user.Result) error {
	fmt.Fprintln(r.out, message)
	for _, msg := range result.Messages() {
		fmt.Fprintln(r.out, msg)
	}
	return errReported
}

func (r *runner) report(message string, err error) error {
	fmt.Fprintln(r.out, message)
	var configErr *mdbconf.ConfigError
	if errors.As(err, &configErr) {
		for _, problem := range configErr.Problems {
			fmt.Fprintln(r.out, problem)
		}
	} else {
		fmt.Fprintln(r.out, err)
	}
	return errReported
}
