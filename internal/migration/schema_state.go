package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// markSchemaReady upserts the single system_bootstrap_state row. Readiness
// tooling reads it to confirm the database was migrated by a matching binary.
func markSchemaReady(ctx context.Context, db *sql.DB, schemaVersion, checksum string) error {
	version := strings.TrimSpace(schemaVersion)
	if version == "" {
		return fmt.Errorf("schema version is required to mark schema ready")
	}

	var checksumValue any
	if strings.TrimSpace(checksum) != "" {
		checksumValue = checksum
	}

	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, `
		INSERT INTO system_bootstrap_state (id, status, schema_version, checksum, activated_at, created_at)
		VALUES (TRUE, 'active', $1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    schema_version = EXCLUDED.schema_version,
		    checksum = EXCLUDED.checksum,
		    activated_at = EXCLUDED.activated_at
	`, version, checksumValue, now)
	if err != nil {
		return fmt.Errorf("mark schema ready: %w", err)
	}
	return nil
}
