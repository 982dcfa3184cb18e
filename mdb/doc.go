// Package mdb is a small layer over the Mongo driver.
//
// Connect or ConnectTo returns an Access object holding the client and database,
// after a ping has shown the server is there. Every blocking call made through
// Access derives its context from Config.Ctx with a per-operation timeout.
//
// Collections are acquired from a CollectionDefinition. A missing collection is
// created with the definition's validator, then the finishers run (see IndexDescription).
// Collection wraps the untyped CRUD helpers; TypedCollection decodes into a Go type.
// The Is* functions classify driver errors.
//
// Tests that need a server embed AccessTestSuite and carry the 'database' build tag,
// so 'go test ./...' runs unit tests only and 'go test -tags database ./...' runs both.
package mdb
