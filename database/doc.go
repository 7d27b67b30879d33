// Package database runs the two steps of a load against PostgreSQL.
//
// Resolve picks the working database on the server. It resumes the last
// active one, creates it when it is gone, or falls back to the first free
// default_dbN name:
//
//	cfg := database.Config{Credentials: creds, Table: "data_table"}
//
//	name, err := database.Resolve(ctx, cfg, state.LastActiveDB, postgres.WithSample(ds))
//	if err != nil {
//	    return err
//	}
//
// Load then creates the table from the dataset's columns, if needed, and
// appends the rows in a single transaction:
//
//	if err := database.Load(ctx, cfg, name, ds); err != nil {
//	    return err
//	}
//
// Both steps go through database/postgres, which owns the connection
// lifecycle and the bootstrap of missing databases.
package database
