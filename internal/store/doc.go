// Package store implements the data access layer for the gateway validator.
//
// Storage uses DuckDB with two locally-migrated tables.
//
//	┌────────────────────┬──────────────────────────────────────────────┐
//	│  Table             │  Purpose                                     │
//	├────────────────────┼──────────────────────────────────────────────┤
//	│  validation_runs   │  Full pipeline runs with stage breakdowns    │
//	│  connection_health │  Last known health per connection (1 row)    │
//	│  schema_migrations │  Migration version tracking                  │
//	└────────────────────┴──────────────────────────────────────────────┘
//
// # RunStore
//
// Persists every pipeline execution. Stage results are stored as a JSON
// blob so the API can return the full breakdown without schema churn when
// stages change.
//
// Listing uses the functional options pattern; each ListOption modifies a
// squirrel.SelectBuilder and options combine freely:
//
//	runs, err := store.Runs().List(ctx,
//	    store.ByConnection("my-apim"),
//	    store.ByStatus(models.RunStatusFailed),
//	    store.Since(time.Now().Add(-24*time.Hour)),
//	    store.WithLimit(50),
//	)
//
// # HealthStore
//
// Single-row-per-connection cache updated after every run. The
// consecutive-failure counter is maintained inside the UPSERT statement
// (reset to 0 on pass, incremented on fail) so concurrent recorders never
// race on read-modify-write.
//
// # Initialization
//
//	db, err := store.NewDB(path)       // ":memory:" for tests
//	err = migrations.Run(ctx, db)
//	s := store.NewStore(db)
package store
