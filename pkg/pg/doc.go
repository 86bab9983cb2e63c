// Package pg bootstraps the PostgreSQL layer used by the dispatch engine's
// stores: pooled connectivity via pgx/v5, schema migrations via goose, and
// error classifiers for the SQLSTATEs the engine's logic depends on.
//
// IsDuplicateKeyError deserves a note: the send-log claim (pkg/sendlog)
// treats a 23505 unique-violation as the normal "someone else owns this
// tuple" signal, so the classifier is part of the engine's correctness
// story, not just a convenience.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    panic(err)
//	}
package pg
