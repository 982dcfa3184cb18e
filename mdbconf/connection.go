package mdbconf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection describes how to reach a Mongo database.
// It is immutable once returned from Build.
type Connection struct {
	host                   string
	port                   int
	login                  string
	password               string
	authDatabase           string
	replicaSetName         string
	replicaSetMembers      []string
	readPreference         string
	database               string
	table                  string
	tls                    *TLS
	connectTimeout         time.Duration
	serverSelectionTimeout time.Duration
}

func (c *Connection) Host() string           { return c.host }
func (c *Connection) Port() int              { return c.port }
func (c *Connection) Login() string          { return c.login }
func (c *Connection) AuthDatabase() string   { return c.authDatabase }
func (c *Connection) ReplicaSetName() string { return c.replicaSetName }
func (c *Connection) ReadPreference() string { return c.readPreference }
func (c *Connection) Database() string       { return c.database }
func (c *Connection) Table() string          { return c.table }

// HasCredentials is true when both login and password were supplied.
func (c *Connection) HasCredentials() bool {
	return c.login != "" && c.password != ""
}

// ReplicaSetMembers returns a copy of the replica set member list.
func (c *Connection) ReplicaSetMembers() []string {
	return append([]string(nil), c.replicaSetMembers...)
}

// TLS returns a copy of the TLS settings and whether TLS was requested at all.
func (c *Connection) TLS() (TLS, bool) {
	if c.tls == nil {
		return TLS{}, false
	}
	return *c.tls, true
}

// ConnectTimeout returns the driver connect timeout.
func (c *Connection) ConnectTimeout() time.Duration {
	return c.connectTimeout
}

// ServerSelectionTimeout returns the driver server selection timeout.
func (c *Connection) ServerSelectionTimeout() time.Duration {
	return c.serverSelectionTimeout
}

// Hosts returns the seed list: the replica set members if any, otherwise host:port.
func (c *Connection) Hosts() []string {
	if len(c.replicaSetMembers) > 0 {
		return c.ReplicaSetMembers()
	}
	return []string{c.host + ":" + strconv.Itoa(c.port)}
}

// URI returns the connection URI without credentials.
func (c *Connection) URI() string {
	uri := "mongodb://" + strings.Join(c.Hosts(), ",")
	if c.replicaSetName != "" {
		uri += "/?replicaSet=" + c.replicaSetName
	}
	return uri
}

// String renders the connection for log messages with the password masked.
func (c *Connection) String() string {
	var builder strings.Builder
	builder.WriteString("mongodb://")
	if c.login != "" {
		builder.WriteString(c.login)
		builder.WriteString(":*****@")
	}
	builder.WriteString(strings.Join(c.Hosts(), ","))
	builder.WriteString("/")
	builder.WriteString(c.database)
	builder.WriteString("?readPreference=")
	builder.WriteString(c.readPreference)
	if c.replicaSetName != "" {
		builder.WriteString("&replicaSet=")
		builder.WriteString(c.replicaSetName)
	}
	if c.tls != nil {
		builder.WriteString("&tls=true")
	}
	return builder.String()
}

// ClientOptions renders the connection as driver client options.
// TLS certificate files are read at this point.
func (c *Connection) ClientOptions() (*options.ClientOptions, error) {
	mode, err := readpref.ModeFromString(c.readPreference)
	if err != nil {
		return nil, &ConfigError{Problems: []string{err.Error()}}
	}
	readPref, err := readpref.New(mode)
	if err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("read preference: %s", err)}}
	}

	opts := options.Client().
		ApplyURI(c.URI()).
		SetReadPreference(readPref).
		SetConnectTimeout(c.connectTimeout).
		SetServerSelectionTimeout(c.serverSelectionTimeout)

	if c.HasCredentials() {
		opts.SetAuth(options.Credential{
			Username:   c.login,
			Password:   c.password,
			AuthSource: c.authDatabase,
		})
	}

	if c.tls != nil {
		tlsConfig, err := c.tls.Config()
		if err != nil {
			return nil, &ConfigError{Problems: []string{err.Error()}}
		}
		opts.SetTLSConfig(tlsConfig)
	}

	if err = opts.Validate(); err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("client options: %s", err)}}
	}

	return opts, nil
}
