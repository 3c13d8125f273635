package migration

import (
	"context"
	"database/sql"
	"fmt"
)

// poemTypes is the fixed lookup set the request form offers. Upserted after
// every migrate so renames and ordering changes land without a release step.
var poemTypes = []struct {
	code  string
	name  string
	order int
}{
	{"HAIKU", "Haiku", 1},
	{"FREE_VERSE", "Free Verse", 2},
	{"SONNET", "Sonnet", 3},
	{"LIMERICK", "Limerick", 4},
	{"ACROSTIC", "Acrostic", 5},
}

func seedPoemTypes(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin poem type seed: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, pt := range poemTypes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poem_types (code, name, display_order)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE
			SET name = EXCLUDED.name,
			    display_order = EXCLUDED.display_order
		`, pt.code, pt.name, pt.order)
		if err != nil {
			return fmt.Errorf("seed poem type %s: %w", pt.code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit poem type seed: %w", err)
	}
	return nil
}
