package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/iliyamo/expo-management/internal/model"
	"github.com/iliyamo/expo-management/internal/repository"
	"github.com/iliyamo/expo-management/internal/testutil"
)

// setupDB opens the test database, migrates it and wipes every table,
// returning a context bounded to the test's lifetime.
func setupDB(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)
	testutil.ApplyMigrations(t, ctx, db)
	testutil.TruncateAll(t, ctx, db)
	return ctx, db
}

func TestBoothReserve_SecondClaimLoses(t *testing.T) {
	ctx, db := setupDB(t)
	booths := repository.NewBoothRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	first := testutil.InsertUser(t, ctx, db, "ex1@test.local", model.RoleExhibitor)
	second := testutil.InsertUser(t, ctx, db, "ex2@test.local", model.RoleExhibitor)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")
	boothID := testutil.InsertBooth(t, ctx, db, expoID, "A-01")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := booths.ReserveTx(ctx, tx, boothID, first); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	if err := booths.ReserveTx(ctx, tx, boothID, second); !errors.Is(err, repository.ErrBoothUnavailable) {
		t.Fatalf("second reserve err = %v, want ErrBoothUnavailable", err)
	}

	b, err := booths.GetByID(ctx, boothID)
	if err != nil {
		t.Fatalf("get booth: %v", err)
	}
	if b.Status != model.BoothStatusReserved || b.ExhibitorID == nil || *b.ExhibitorID != first {
		t.Errorf("booth = %s/%v, want reserved by first claimant", b.Status, b.ExhibitorID)
	}
}

func TestApproveWithBooth_UnavailableBoothRollsBack(t *testing.T) {
	ctx, db := setupDB(t)
	booths := repository.NewBoothRepo(db)
	apps := repository.NewApplicationRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	holder := testutil.InsertUser(t, ctx, db, "holder@test.local", model.RoleExhibitor)
	applicant := testutil.InsertUser(t, ctx, db, "applicant@test.local", model.RoleExhibitor)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")
	boothID := testutil.InsertBooth(t, ctx, db, expoID, "A-01")
	profileID := testutil.InsertExhibitorProfile(t, ctx, db, applicant, "Acme")
	appID := testutil.InsertApplication(t, ctx, db, expoID, applicant, profileID, model.ApplicationStatusPending)

	// Someone else already holds the booth.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := booths.ReserveTx(ctx, tx, boothID, holder); err != nil {
		t.Fatalf("pre-reserve: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// The decision and the booth claim share one transaction, so the
	// failed claim must undo the recorded approval.
	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := apps.GetForAssignTx(ctx, tx, appID); err != nil {
		t.Fatalf("lock application: %v", err)
	}
	if err := apps.DecideTx(ctx, tx, appID, organizer, model.ApplicationStatusApproved, nil); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := booths.ReserveTx(ctx, tx, boothID, applicant); !errors.Is(err, repository.ErrBoothUnavailable) {
		t.Fatalf("reserve err = %v, want ErrBoothUnavailable", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	a, err := apps.GetByID(ctx, appID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if a.Status != model.ApplicationStatusPending || a.AssignedBoothID != nil {
		t.Errorf("application = %s/%v, want pending with no booth", a.Status, a.AssignedBoothID)
	}
	b, err := booths.GetByID(ctx, boothID)
	if err != nil {
		t.Fatalf("get booth: %v", err)
	}
	if b.ExhibitorID == nil || *b.ExhibitorID != holder {
		t.Errorf("booth holder = %v, want untouched original reservation", b.ExhibitorID)
	}
}

func TestSessionRegistration_CapacityNeverExceeded(t *testing.T) {
	ctx, db := setupDB(t)
	sessions := repository.NewSessionRepo(db)
	regs := repository.NewRegistrationRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")
	sessionID := testutil.InsertSession(t, ctx, db, expoID, "Intro Workshop", 2)

	register := func(attendee uint64, code string) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()
		s, err := sessions.GetForRegistrationTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		n, err := regs.CountForSessionTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if s.Capacity > 0 && n >= s.Capacity {
			return repository.ErrConflict
		}
		g := model.Registration{
			ExpoID:           expoID,
			SessionID:        &sessionID,
			AttendeeID:       attendee,
			ConfirmationCode: code,
		}
		if err := regs.CreateSessionTx(ctx, tx, &g); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	}

	for i := 0; i < 2; i++ {
		attendee := testutil.InsertUser(t, ctx, db, fmt.Sprintf("att%d@test.local", i), model.RoleAttendee)
		if err := register(attendee, fmt.Sprintf("CODE-%d", i)); err != nil {
			t.Fatalf("registration %d: %v", i, err)
		}
	}

	late := testutil.InsertUser(t, ctx, db, "late@test.local", model.RoleAttendee)
	if err := register(late, "CODE-LATE"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("over-capacity err = %v, want ErrConflict", err)
	}

	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE session_id=?`, sessionID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("registrations = %d, want 2", n)
	}
}

func TestExpoRegistration_DuplicateRejected(t *testing.T) {
	ctx, db := setupDB(t)
	regs := repository.NewRegistrationRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	attendee := testutil.InsertUser(t, ctx, db, "att@test.local", model.RoleAttendee)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")

	g := model.Registration{ExpoID: expoID, AttendeeID: attendee, ConfirmationCode: "CODE-1"}
	if err := regs.CreateExpo(ctx, &g); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	dup := model.Registration{ExpoID: expoID, AttendeeID: attendee, ConfirmationCode: "CODE-2"}
	if err := regs.CreateExpo(ctx, &dup); !errors.Is(err, repository.ErrAlreadyRegistered) {
		t.Fatalf("duplicate err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestOwnershipGuards_AdminBypass(t *testing.T) {
	ctx, db := setupDB(t)
	apps := repository.NewApplicationRepo(db)
	regs := repository.NewRegistrationRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	stranger := testutil.InsertUser(t, ctx, db, "other@test.local", model.RoleOrganizer)
	admin := testutil.InsertUser(t, ctx, db, "admin@test.local", model.RoleAdmin)
	applicant := testutil.InsertUser(t, ctx, db, "ex@test.local", model.RoleExhibitor)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")
	profileID := testutil.InsertExhibitorProfile(t, ctx, db, applicant, "Acme")
	appID := testutil.InsertApplication(t, ctx, db, expoID, applicant, profileID, model.ApplicationStatusPending)

	if err := apps.StartReview(ctx, appID, stranger, false); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("foreign organizer err = %v, want ErrForbidden", err)
	}
	if err := apps.StartReview(ctx, appID, admin, true); err != nil {
		t.Fatalf("admin start review: %v", err)
	}

	if _, err := regs.StatsByExpo(ctx, expoID, stranger, false); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("foreign stats err = %v, want ErrForbidden", err)
	}
	stats, err := regs.StatsByExpo(ctx, expoID, admin, true)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("stats total = %d, want 0", stats.Total)
	}
}

func TestMarkReadByIDs_ScopedToRecipient(t *testing.T) {
	ctx, db := setupDB(t)
	comms := repository.NewCommunicationRepo(db)

	sender := testutil.InsertUser(t, ctx, db, "sender@test.local", model.RoleOrganizer)
	alice := testutil.InsertUser(t, ctx, db, "alice@test.local", model.RoleExhibitor)
	bob := testutil.InsertUser(t, ctx, db, "bob@test.local", model.RoleExhibitor)

	toAlice := testutil.InsertMessage(t, ctx, db, sender, alice, "hers")
	toBob := testutil.InsertMessage(t, ctx, db, sender, bob, "his")

	n, err := comms.MarkReadByIDs(ctx, alice, []uint64{toAlice, toBob})
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 1 {
		t.Errorf("marked = %d, want only the recipient's own message", n)
	}

	m, err := comms.GetByID(ctx, toBob)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if m.Status != model.MessageStatusDelivered {
		t.Errorf("foreign message status = %s, want delivered", m.Status)
	}

	if n, err = comms.MarkReadByIDs(ctx, alice, nil); err != nil || n != 0 {
		t.Errorf("empty id list = (%d, %v), want (0, nil)", n, err)
	}
}

func TestBoothRelease_ClearsApplicationRef(t *testing.T) {
	ctx, db := setupDB(t)
	booths := repository.NewBoothRepo(db)
	apps := repository.NewApplicationRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	exhibitor := testutil.InsertUser(t, ctx, db, "ex@test.local", model.RoleExhibitor)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")
	boothID := testutil.InsertBooth(t, ctx, db, expoID, "A-01")
	profileID := testutil.InsertExhibitorProfile(t, ctx, db, exhibitor, "Acme")
	appID := testutil.InsertApplication(t, ctx, db, expoID, exhibitor, profileID, model.ApplicationStatusApproved)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := booths.ReserveTx(ctx, tx, boothID, exhibitor); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := apps.SetBoothTx(ctx, tx, appID, &boothID); err != nil {
		t.Fatalf("set booth: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := booths.ReleaseTx(ctx, tx, boothID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := apps.ClearBoothRefTx(ctx, tx, boothID); err != nil {
		t.Fatalf("clear ref: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	b, err := booths.GetByID(ctx, boothID)
	if err != nil {
		t.Fatalf("get booth: %v", err)
	}
	if b.Status != model.BoothStatusAvailable || b.ExhibitorID != nil {
		t.Errorf("booth = %s/%v, want available and unclaimed", b.Status, b.ExhibitorID)
	}
	a, err := apps.GetByID(ctx, appID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if a.AssignedBoothID != nil {
		t.Errorf("assigned booth = %v, want cleared", a.AssignedBoothID)
	}
}

func TestNotificationPersistsSenderAndExpo(t *testing.T) {
	ctx, db := setupDB(t)
	notifs := repository.NewNotificationRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	exhibitor := testutil.InsertUser(t, ctx, db, "ex@test.local", model.RoleExhibitor)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")

	n := model.Notification{
		UserID:   exhibitor,
		SenderID: &organizer,
		ExpoID:   &expoID,
		Event:    "application.decided",
		Title:    "Application approved",
		Body:     "Welcome aboard",
	}
	if err := notifs.Insert(ctx, &n); err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := notifs.ListByUser(ctx, exhibitor, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("notifications = %d, want 1", len(list))
	}
	got := list[0]
	if got.SenderID == nil || *got.SenderID != organizer {
		t.Errorf("sender = %v, want the deciding organizer", got.SenderID)
	}
	if got.ExpoID == nil || *got.ExpoID != expoID {
		t.Errorf("expo = %v, want the decided expo", got.ExpoID)
	}
}

func TestBoothOccupy_Transitions(t *testing.T) {
	ctx, db := setupDB(t)
	booths := repository.NewBoothRepo(db)

	organizer := testutil.InsertUser(t, ctx, db, "org@test.local", model.RoleOrganizer)
	exhibitor := testutil.InsertUser(t, ctx, db, "ex@test.local", model.RoleExhibitor)
	intruder := testutil.InsertUser(t, ctx, db, "other@test.local", model.RoleExhibitor)
	expoID := testutil.InsertExpo(t, ctx, db, organizer, "Tech Expo")
	boothID := testutil.InsertBooth(t, ctx, db, expoID, "A-01")

	inTx := func(f func(tx *sql.Tx) error) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := f(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	// Checking in before any reservation exists is an invalid transition.
	err := inTx(func(tx *sql.Tx) error { return booths.OccupyTx(ctx, tx, boothID, exhibitor) })
	if !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("occupy available err = %v, want ErrInvalidState", err)
	}

	if err := inTx(func(tx *sql.Tx) error { return booths.ReserveTx(ctx, tx, boothID, exhibitor) }); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err = inTx(func(tx *sql.Tx) error { return booths.OccupyTx(ctx, tx, boothID, intruder) })
	if !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("occupy by non-holder err = %v, want ErrInvalidState", err)
	}

	if err := inTx(func(tx *sql.Tx) error { return booths.OccupyTx(ctx, tx, boothID, exhibitor) }); err != nil {
		t.Fatalf("occupy by holder: %v", err)
	}
	b, err := booths.GetByID(ctx, boothID)
	if err != nil {
		t.Fatalf("get booth: %v", err)
	}
	if b.Status != model.BoothStatusOccupied {
		t.Errorf("booth status = %s, want occupied", b.Status)
	}
}
