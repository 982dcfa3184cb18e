// Package mdbconf builds validated Mongo connection configurations.
//
// Raw key/value input (environment, a YAML file, a literal map) is collected into a Raw struct.
// Build validates the Raw data and returns an immutable Connection,
// or a *ConfigError listing every problem found.
// No network I/O happens here, the only side effect is checking that TLS certificate files exist.
//
// A Connection renders itself as driver ClientOptions for use by the mdb package.
// The password is never rendered by String() and has no exported accessor.
package mdbconf
