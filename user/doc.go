// Package user manages user accounts kept in a Mongo collection.
//
// Manager is the single entry point. It is built with a Connector,
// connected once with a validated mdbconf.Connection and then used for
// create, fetch, update and delete calls. Every call returns a Result
// holding a success flag, the errors that occurred and an info map.
//
// Storage is reached through the Store interface. MongoStore is the
// production adapter, MemoryStore backs tests and dry runs and CachedStore
// adds a read-through cache in front of either.
package user
