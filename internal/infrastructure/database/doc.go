// Package database provides the node's SQLite store.
//
// The store holds the event journal and survives resets, which makes it
// the place to look after a node has restarted itself. Schema changes are
// versioned migrations registered by the migrations package:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive-only; each .up.sql has a matching .down.sql.
package database
