package mdbconf

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// DefaultHost is used when no host is provided.
	DefaultHost = "localhost"

	// DefaultPort is used when no port is provided.
	DefaultPort = 27017

	// DefaultAuthDatabase is the authentication database used when credentials are given without one.
	DefaultAuthDatabase = "admin"

	// DefaultReadPreference is used when no read preference is provided.
	DefaultReadPreference = "primaryPreferred"

	// DefaultDatabase is used when no database name is provided.
	DefaultDatabase = "test"

	// DefaultTable is the collection used when no table name is provided.
	DefaultTable = "users"

	// DefaultConnectTimeout is the driver connect timeout when none is provided.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultServerSelectionTimeout is the driver server selection timeout when none is provided.
	DefaultServerSelectionTimeout = 30 * time.Second
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their configuration key rather than the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Build validates raw connection data and returns an immutable Connection.
// Every problem found is reported in a single *ConfigError.
func Build(raw Raw) (*Connection, error) {
	problems := &ConfigError{}
	if err := validate.Struct(&raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				problems.add(describe(fieldErr))
			}
		} else {
			problems.add(err.Error())
		}
	}

	conn := &Connection{
		host:                   orDefault(strings.TrimSpace(raw.Host), DefaultHost),
		port:                   DefaultPort,
		login:                  raw.Login,
		password:               raw.Password,
		authDatabase:           raw.AuthDatabase,
		replicaSetName:         strings.TrimSpace(raw.ReplicaSetName),
		readPreference:         orDefault(raw.ReadPreference, DefaultReadPreference),
		database:               orDefault(raw.Database, DefaultDatabase),
		table:                  orDefault(raw.Table, DefaultTable),
		connectTimeout:         raw.ConnectTimeout,
		serverSelectionTimeout: raw.ServerSelectionTimeout,
	}

	if raw.Port != "" {
		if port, err := strconv.Atoi(strings.TrimSpace(raw.Port)); err != nil || port < 1 || port > 65535 {
			problems.add(fmt.Sprintf("port %q must be an integer between 1 and 65535", raw.Port))
		} else {
			conn.port = port
		}
	}

	if (raw.Login == "") != (raw.Password == "") {
		problems.add("login and password must be supplied together")
	} else if raw.Login != "" && conn.authDatabase == "" {
		conn.authDatabase = DefaultAuthDatabase
	}

	for _, member := range raw.ReplicaSetMembers {
		if member = strings.TrimSpace(member); member != "" {
			conn.replicaSetMembers = append(conn.replicaSetMembers, member)
		}
	}
	if conn.replicaSetName != "" && len(conn.replicaSetMembers) == 0 {
		problems.add(fmt.Sprintf("replica set %q has no members", conn.replicaSetName))
	}

	if conn.connectTimeout < 0 || conn.serverSelectionTimeout < 0 {
		problems.add("timeouts must not be negative")
	}
	if conn.connectTimeout == 0 {
		conn.connectTimeout = DefaultConnectTimeout
	}
	if conn.serverSelectionTimeout == 0 {
		conn.serverSelectionTimeout = DefaultServerSelectionTimeout
	}

	if raw.TLS.Requested() {
		conn.tls = buildTLS(&raw.TLS, problems)
	}

	if err := problems.orNil(); err != nil {
		return nil, err
	}

	return conn, nil
}

// MustBuild works like Build but panics on error.
func MustBuild(raw Raw) *Connection {
	conn, err := Build(raw)
	if err != nil {
		panic(err)
	}
	return conn
}

func buildTLS(raw *RawTLS, problems *ConfigError) *TLS {
	if raw.PeerName == "" {
		problems.add("TLS requires a peer name")
	}
	if raw.CAFile == "" {
		problems.add("TLS requires a CA file")
	} else {
		checkFile("CA", raw.CAFile, problems)
	}
	if raw.CertFile != "" {
		checkFile("certificate", raw.CertFile, problems)
	}

	return &TLS{
		PeerName:        raw.PeerName,
		VerifyPeer:      flag(raw.VerifyPeer, true),
		VerifyExpiry:    flag(raw.VerifyExpiry, true),
		VerifyPeerName:  flag(raw.VerifyPeerName, true),
		AllowSelfSigned: flag(raw.AllowSelfSigned, false),
		CAFile:          raw.CAFile,
		CertFile:        raw.CertFile,
	}
}

func checkFile(kind, path string, problems *ConfigError) {
	if info, err := os.Stat(path); err != nil {
		problems.add(fmt.Sprintf("TLS %s file %s: %s", kind, path, err))
	} else if info.IsDir() {
		problems.add(fmt.Sprintf("TLS %s file %s is a directory", kind, path))
	}
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "oneof":
		return fmt.Sprintf("%s %q must be one of: %s", fieldErr.Field(), fieldErr.Value(), fieldErr.Param())
	case "hostname_port":
		return fmt.Sprintf("%s %q must be host:port", fieldErr.Field(), fieldErr.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldErr.Field(), fieldErr.Param())
	case "excludes", "excludesall":
		return fmt.Sprintf("%s must not contain any of %q", fieldErr.Field(), fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fieldErr.Field(), fieldErr.Tag())
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func flag(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
