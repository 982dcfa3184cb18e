package mdbconf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix is prepended to the environment variable names of Raw fields by FromEnv.
const DefaultEnvPrefix = "MONGO_"

// Raw connection data as supplied by the user.
// Nothing here is validated, see Build.
type Raw struct {
	Host              string   `env:"HOST" yaml:"host" json:"host"`
	Port              string   `env:"PORT" yaml:"port" json:"port"`
	Login             string   `env:"LOGIN" yaml:"login" json:"login"`
	Password          string   `env:"PASSWORD" yaml:"password" json:"password"`
	AuthDatabase      string   `env:"AUTH_DB" yaml:"auth_db" json:"auth_db"`
	ReplicaSetName    string   `env:"REPLICA_SET" yaml:"replica_set" json:"replica_set"`
	ReplicaSetMembers []string `env:"REPLICA_SET_MEMBERS" envSeparator:"," yaml:"replica_set_members" json:"replica_set_members" validate:"omitempty,dive,hostname_port"`
	ReadPreference    string   `env:"READ_PREFERENCE" yaml:"read_preference" json:"read_preference" validate:"omitempty,oneof=primary primaryPreferred secondary secondaryPreferred nearest"`
	Database          string   `env:"DATABASE" yaml:"database" json:"database" validate:"omitempty,max=63,excludesall=/$"`
	Table             string   `env:"TABLE" yaml:"table" json:"table" validate:"omitempty,max=120,excludes=$"`

	ConnectTimeout         time.Duration `env:"CONNECT_TIMEOUT" yaml:"connect_timeout" json:"connect_timeout"`
	ServerSelectionTimeout time.Duration `env:"SERVER_SELECTION_TIMEOUT" yaml:"server_selection_timeout" json:"server_selection_timeout"`

	TLS RawTLS `envPrefix:"TLS_" yaml:"tls" json:"tls"`
}

// RawTLS holds the optional TLS settings.
// TLS is requested when Enabled is true or any other field is set.
// Unset verification flags default to true, AllowSelfSigned defaults to false.
type RawTLS struct {
	Enabled         bool   `env:"ENABLED" yaml:"enabled" json:"enabled"`
	PeerName        string `env:"PEER_NAME" yaml:"peer_name" json:"peer_name"`
	VerifyPeer      *bool  `env:"VERIFY_PEER" yaml:"verify_peer" json:"verify_peer"`
	VerifyExpiry    *bool  `env:"VERIFY_EXPIRY" yaml:"verify_expiry" json:"verify_expiry"`
	VerifyPeerName  *bool  `env:"VERIFY_PEER_NAME" yaml:"verify_peer_name" json:"verify_peer_name"`
	AllowSelfSigned *bool  `env:"ALLOW_SELF_SIGNED" yaml:"allow_self_signed" json:"allow_self_signed"`
	CAFile          string `env:"CA_FILE" yaml:"ca_file" json:"ca_file"`
	CertFile        string `env:"CERT_FILE" yaml:"cert_file" json:"cert_file"`
}

// Requested returns true if any TLS setting is present, including the verification flags.
func (rt *RawTLS) Requested() bool {
	return rt.Enabled || rt.PeerName != "" || rt.CAFile != "" || rt.CertFile != "" ||
		rt.VerifyPeer != nil || rt.VerifyExpiry != nil || rt.VerifyPeerName != nil || rt.AllowSelfSigned != nil
}

// FromEnv loads Raw data from environment variables named with the specified prefix.
// An empty prefix means DefaultEnvPrefix.
func FromEnv(prefix string) (Raw, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	var raw Raw
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: prefix}); err != nil {
		return raw, &ConfigError{Problems: []string{fmt.Sprintf("parse environment: %s", err)}}
	}
	return raw, nil
}

// FromMap loads Raw data from literal key/value pairs.
// Keys are the environment variable names without prefix, matched without regard to case,
// for example "host", "port", "replica_set_members" or "tls_ca_file".
func FromMap(values map[string]string) (Raw, error) {
	environment := make(map[string]string, len(values))
	for key, value := range values {
		environment[strings.ToUpper(key)] = value
	}
	var raw Raw
	if err := env.ParseWithOptions(&raw, env.Options{Environment: environment}); err != nil {
		return raw, &ConfigError{Problems: []string{fmt.Sprintf("parse values: %s", err)}}
	}
	return raw, nil
}

// FromYAML loads Raw data from a YAML document.
func FromYAML(data []byte) (Raw, error) {
	var raw Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return raw, &ConfigError{Problems: []string{fmt.Sprintf("parse YAML: %s", err)}}
	}
	return raw, nil
}

// FromYAMLFile loads Raw data from a YAML file.
func FromYAMLFile(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Raw{}, &ConfigError{Problems: []string{fmt.Sprintf("read %s: %s", path, err)}}
	}
	return FromYAML(data)
}
