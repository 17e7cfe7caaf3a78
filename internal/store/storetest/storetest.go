// Package storetest provides a schema-ready in-memory store for package
// tests.
package storetest

import (
	"context"
	"testing"

	"rolecraft/internal/store/sqlite"
)

func NewSQLite(tb testing.TB) *sqlite.Client {
	tb.Helper()

	ctx := context.Background()
	client, err := sqlite.New(ctx, "sqlite://:memory:")
	if err != nil {
		tb.Fatalf("opening in-memory sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = client.Close(ctx) })

	if err := client.EnsureSchema(ctx); err != nil {
		tb.Fatalf("ensuring schema: %v", err)
	}
	return client
}
