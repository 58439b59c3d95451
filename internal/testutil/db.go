// Package testutil provides database helpers for integration tests.
// Tests that call NewTestDB skip themselves when no MySQL instance is
// reachable, so the suite stays runnable without infrastructure.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/iliyamo/expo-management/migrations"
)

const (
	defaultTestDSN = "expo:expo@tcp(localhost:3306)/expo_management_test?parseTime=true&loc=UTC"
	testDBLockName = "expo_management_test_lock"
)

// NewTestDB opens the test database named by TEST_DATABASE_DSN (or a
// local default), skipping the test when the database is unreachable.
// The whole test holds a named lock so parallel packages cannot trample
// each other's fixtures.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("skipping MySQL integration tests: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	lockTestDB(t, db)
	return db
}

// ApplyMigrations brings the test schema up to date.
func ApplyMigrations(t *testing.T, ctx context.Context, db *sql.DB) {
	t.Helper()
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}

// TruncateAll wipes every domain table between test cases. Foreign key
// checks are suspended on this connection for the duration.
func TruncateAll(t *testing.T, ctx context.Context, db *sql.DB) {
	t.Helper()
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("acquire conn: %v", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
		t.Fatalf("disable fk checks: %v", err)
	}
	tables := []string{
		"notifications", "messages", "registrations",
		"session_materials", "session_speakers", "sessions",
		"applications", "booths",
		"exhibitor_documents", "exhibitor_products", "exhibitors",
		"expos", "refresh_tokens", "users",
	}
	for _, tbl := range tables {
		if _, err := conn.ExecContext(ctx, "TRUNCATE TABLE "+tbl); err != nil {
			t.Fatalf("truncate %s: %v", tbl, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1"); err != nil {
		t.Fatalf("enable fk checks: %v", err)
	}
}

// InsertUser creates a user row and returns its id.
func InsertUser(t *testing.T, ctx context.Context, db *sql.DB, email, role string) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, first_name, last_name)
		 VALUES (?, 'x', ?, 'Test', 'User')`, email, role)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	return uint64(id)
}

// InsertExpo creates a published public expo owned by organizerID and
// returns its id.
func InsertExpo(t *testing.T, ctx context.Context, db *sql.DB, organizerID uint64, title string) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO expos (organizer_id, title, description, start_date, end_date,
		 venue, address, city, country, status, max_exhibitors, max_attendees, is_public)
		 VALUES (?, ?, 'd', DATE_ADD(NOW(), INTERVAL 30 DAY), DATE_ADD(NOW(), INTERVAL 33 DAY),
		 'Hall', 'Street 1', 'City', 'Country', 'published', 100, 1000, 1)`,
		organizerID, title)
	if err != nil {
		t.Fatalf("insert expo: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("expo id: %v", err)
	}
	return uint64(id)
}

// InsertBooth creates an available booth in an expo and returns its id.
func InsertBooth(t *testing.T, ctx context.Context, db *sql.DB, expoID uint64, number string) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO booths (expo_id, booth_number, width, height, area, floor, category, status, is_active)
		 VALUES (?, ?, 3, 3, 9, '1', 'standard', 'available', 1)`, expoID, number)
	if err != nil {
		t.Fatalf("insert booth: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("booth id: %v", err)
	}
	return uint64(id)
}

// InsertExhibitorProfile creates a company profile for a user and
// returns its id.
func InsertExhibitorProfile(t *testing.T, ctx context.Context, db *sql.DB, userID uint64, company string) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO exhibitors (user_id, company_name) VALUES (?, ?)`, userID, company)
	if err != nil {
		t.Fatalf("insert exhibitor profile: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("profile id: %v", err)
	}
	return uint64(id)
}

// InsertApplication creates an application in the given status and
// returns its id.
func InsertApplication(t *testing.T, ctx context.Context, db *sql.DB, expoID, exhibitorID, profileID uint64, status string) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO applications (expo_id, exhibitor_id, profile_id, staff_count, status)
		 VALUES (?, ?, ?, 2, ?)`, expoID, exhibitorID, profileID, status)
	if err != nil {
		t.Fatalf("insert application: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("application id: %v", err)
	}
	return uint64(id)
}

// InsertSession creates a scheduled session with the given capacity and
// returns its id.
func InsertSession(t *testing.T, ctx context.Context, db *sql.DB, expoID uint64, title string, capacity uint32) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO sessions (expo_id, title, session_type, starts_at, ends_at, room, capacity,
		 registration_required, status)
		 VALUES (?, ?, 'workshop', DATE_ADD(NOW(), INTERVAL 31 DAY), DATE_ADD(NOW(), INTERVAL 31 DAY) + INTERVAL 1 HOUR,
		 'R1', ?, 1, 'scheduled')`, expoID, title, capacity)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("session id: %v", err)
	}
	return uint64(id)
}

// InsertMessage creates a delivered direct message and returns its id.
func InsertMessage(t *testing.T, ctx context.Context, db *sql.DB, senderID, recipientID uint64, subject string) uint64 {
	t.Helper()
	res, err := db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, subject, body, message_type, priority, status)
		 VALUES (?, ?, ?, 'b', 'general', 'normal', 'delivered')`, senderID, recipientID, subject)
	if err != nil {
		t.Fatalf("insert message: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("message id: %v", err)
	}
	return uint64(id)
}

func lockTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("acquire lock conn: %v", err)
	}
	var got int
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 30)", testDBLockName).Scan(&got); err != nil || got != 1 {
		_ = conn.Close()
		t.Fatalf("acquire test lock: got=%d err=%v", got, err)
	}

	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), "DO RELEASE_LOCK(?)", testDBLockName)
		_ = conn.Close()
	})
}
