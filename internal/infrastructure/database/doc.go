// Package database provides SQLite persistence for the actuator node.
//
// The node keeps a single small state file (last applied output value) so a
// restart can resume the previous level instead of going dark. This package
// manages:
//   - Opening the SQLite file with WAL mode and busy timeout
//   - Schema migrations embedded into the binary
//   - Health checks and lifecycle
//
// The connection pool is pinned to one connection: the control loop is the
// only writer this node ever has.
//
// # Usage
//
//	db, err := database.Open(database.Config{Path: cfg.State.Path, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
