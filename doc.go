// Package userload fetches randomly generated users, flattens them into a table and
// loads that table into PostgreSQL, creating the target database and table on demand.
//
// The root package holds what every layer shares: connection Credentials,
// identifier validation and the tagged Error type whose Kind classifies failures
// of the bootstrap and load path.
//
// # Key Components
//
//   - dataset: typed in-memory table built from nested JSON records
//   - schema: maps column semantic types to PostgreSQL column types
//   - transform: password hashing, filtering and column renaming
//   - randomuser: HTTP client for the random user API
//   - database/postgres: the Controller that connects, bootstraps missing
//     databases, creates the initial table and bulk-inserts rows
//   - database: resolves the working database and loads a dataset into it
//   - config: settings and the last-active-database state file
//
// # Example Usage
//
//	ctrl, err := postgres.Open(ctx, creds, postgres.WithSample(ds))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer func() { _ = ctrl.Close() }()
//
//	if err := ctrl.CreateInitialTable(ctx, ds.Columns()); err != nil {
//	    log.Fatal(err)
//	}
//	if err := ctrl.BulkInsert(ctx, userload.DefaultTable, ds); err != nil {
//	    log.Fatal(err)
//	}
//
// Failures carry a Kind that callers can branch on:
//
//	if userload.IsKind(err, userload.KindInsertion) {
//	    // the whole batch was rolled back
//	}
package userload
