package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/lexabot/lexa/internal/infra/sqlite"
)

// TestMigrate_RunsAllMigrations verifies that MigrateUp applies all pending migrations.
func TestMigrate_RunsAllMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v; want nil", err)
	}

	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM schema_migrations")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("SELECT COUNT(*) FROM schema_migrations error = %v", err)
	}

	if count == 0 {
		t.Error("schema_migrations has 0 rows after MigrateUp; want > 0")
	}
}

// TestMigrate_Idempotent verifies that running MigrateUp twice does not fail.
func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first run error = %v; want nil", err)
	}

	var countBefore int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countBefore); err != nil {
		t.Fatalf("count before: %v", err)
	}

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second run error = %v; want nil (idempotent)", err)
	}

	var countAfter int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countAfter); err != nil {
		t.Fatalf("count after: %v", err)
	}

	if countAfter != countBefore {
		t.Errorf("schema_migrations count changed from %d to %d; want unchanged", countBefore, countAfter)
	}
}

// TestMigrate_TablesCreated verifies the full schema exists after migration.
func TestMigrate_TablesCreated(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	for _, table := range []string{"users", "messages", "documents", "case_law"} {
		assertTableExists(t, db, table)
	}
}

// TestMigrate_ForeignKeyConstraintEnforced verifies that FK constraints are active.
// Inserting a message for a non-existent user must fail.
func TestMigrate_ForeignKeyConstraintEnforced(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO messages (id, user_id, role, content, created_at)
		VALUES ('m-1', 'nonexistent-user', 'user', 'hello', datetime('now'))
	`)

	if err == nil {
		t.Error("INSERT with non-existent user_id succeeded; want FK constraint error")
	}
}

// TestMigrate_UserEmailUnique verifies the UNIQUE constraint on users.email.
func TestMigrate_UserEmailUnique(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO users (id, email, password_hash)
		VALUES ('u-1', 'test@example.com', 'hash')
	`); err != nil {
		t.Fatalf("first user insert error = %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO users (id, email, password_hash)
		VALUES ('u-2', 'test@example.com', 'hash')
	`)
	if err == nil {
		t.Error("duplicate email INSERT succeeded; want UNIQUE constraint error")
	}
}

// TestMigrate_MessageRoleConstrained verifies the CHECK constraint on messages.role.
func TestMigrate_MessageRoleConstrained(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO users (id, email, password_hash)
		VALUES ('u-1', 'a@example.com', 'hash')
	`); err != nil {
		t.Fatalf("user insert: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO messages (id, user_id, role, content, created_at)
		VALUES ('m-1', 'u-1', 'system', 'persona', datetime('now'))
	`)
	if err == nil {
		t.Error("message with role 'system' succeeded; want CHECK constraint error")
	}
}

// TestMigrate_CaseLawSeeded verifies the reference corpus ships with seed rows.
func TestMigrate_CaseLawSeeded(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM case_law").Scan(&count); err != nil {
		t.Fatalf("count case_law: %v", err)
	}
	if count < 3 {
		t.Errorf("case_law rows = %d; want at least the 3 seed cases", count)
	}

	var title string
	err := db.QueryRow("SELECT title FROM case_law WHERE year = 2020").Scan(&title)
	if err != nil {
		t.Fatalf("seed lookup: %v", err)
	}
	if title != "Smith v. Jones" {
		t.Errorf("2020 seed case = %q; want 'Smith v. Jones'", title)
	}
}

// TestMigrationVersion_NoMigrations verifies version is 0 on fresh DB.
func TestMigrationVersion_NoMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}

	if version != 0 {
		t.Errorf("MigrationVersion() = %d; want 0 on fresh DB", version)
	}
}

// TestMigrationVersion_AfterMigrate verifies version reflects the latest file.
func TestMigrationVersion_AfterMigrate(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 4 {
		t.Errorf("MigrationVersion() = %d; want 4", version)
	}
}

// assertTableExists fails the test if the given table doesn't exist in the DB.
func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		tableName,
	).Scan(&name)

	if err == sql.ErrNoRows {
		t.Errorf("table %q not found in sqlite_master after MigrateUp", tableName)
		return
	}
	if err != nil {
		t.Fatalf("assertTableExists(%q) query error = %v", tableName, err)
	}
}
