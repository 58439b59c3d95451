package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/expo-management/internal/model"
)

// ApplicationRepo provides CRUD operations for exhibitor applications
// and the state transitions of the review workflow.  Decisions are
// conditional updates keyed on the current status so two concurrent
// reviewers cannot both win.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo returns a new ApplicationRepo bound to the given database.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// ErrAlreadyApplied is returned when an exhibitor submits a second
// application to the same expo.
var ErrAlreadyApplied = errors.New("application already exists for this expo")

const applicationCols = `id, expo_id, exhibitor_id, profile_id, booth_preference, staff_count,
	special_requirements, status, review_notes, reviewed_by, reviewed_at, assigned_booth_id,
	created_at, updated_at`

func scanApplication(scan func(dest ...interface{}) error) (model.Application, error) {
	var a model.Application
	var pref, notes, reqs sql.NullString
	var reviewedBy, boothID sql.NullInt64
	var reviewedAt sql.NullTime
	err := scan(
		&a.ID, &a.ExpoID, &a.ExhibitorID, &a.ProfileID, &pref, &a.StaffCount,
		&reqs, &a.Status, &notes, &reviewedBy, &reviewedAt, &boothID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}
	if pref.Valid {
		s := pref.String
		a.BoothPreference = &s
	}
	if reqs.Valid {
		s := reqs.String
		a.SpecialRequirements = &s
	}
	if notes.Valid {
		s := notes.String
		a.ReviewNotes = &s
	}
	if reviewedBy.Valid {
		v := uint64(reviewedBy.Int64)
		a.ReviewedBy = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	if boothID.Valid {
		v := uint64(boothID.Int64)
		a.AssignedBoothID = &v
	}
	return a, nil
}

// Create inserts a new application in the pending state.  The unique
// (expo_id, exhibitor_id) index maps duplicates to ErrAlreadyApplied.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) error {
	const q = `INSERT INTO applications (expo_id, exhibitor_id, profile_id, booth_preference,
		staff_count, special_requirements, status) VALUES (?,?,?,?,?,?,'pending')`
	res, err := r.db.ExecContext(ctx, q,
		a.ExpoID, a.ExhibitorID, a.ProfileID, a.BoothPreference, a.StaffCount, a.SpecialRequirements)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyApplied
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.Status = model.ApplicationStatusPending
	return nil
}

// GetByID returns a single application.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (model.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationCols+` FROM applications WHERE id = ?`, id)
	return scanApplication(row.Scan)
}

// ApplicationDetail joins the applicant's company and the expo title
// onto an application for list views.
type ApplicationDetail struct {
	model.Application
	CompanyName string `json:"company_name"`
	ExpoTitle   string `json:"expo_title"`
}

// ListByExpoForOrganizer returns the applications of an expo after
// verifying that the caller owns it or is an admin.  An empty status
// filters nothing.
func (r *ApplicationRepo) ListByExpoForOrganizer(ctx context.Context, expoID, callerID uint64, admin bool, status string) ([]ApplicationDetail, error) {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM expos WHERE id=?`, expoID).Scan(&actual); err != nil {
		return nil, err
	}
	if !admin && actual != callerID {
		return nil, ErrForbidden
	}
	q := `SELECT a.id, a.expo_id, a.exhibitor_id, a.profile_id, a.booth_preference, a.staff_count,
		a.special_requirements, a.status, a.review_notes, a.reviewed_by, a.reviewed_at,
		a.assigned_booth_id, a.created_at, a.updated_at, x.company_name, e.title
		FROM applications a
		JOIN exhibitors x ON x.id = a.profile_id
		JOIN expos e ON e.id = a.expo_id
		WHERE a.expo_id = ?`
	args := []interface{}{expoID}
	if status != "" {
		q += ` AND a.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY a.created_at DESC`
	return r.queryDetails(ctx, q, args...)
}

// ListByExhibitor returns all applications submitted by a user, newest
// first.
func (r *ApplicationRepo) ListByExhibitor(ctx context.Context, exhibitorID uint64) ([]ApplicationDetail, error) {
	const q = `SELECT a.id, a.expo_id, a.exhibitor_id, a.profile_id, a.booth_preference, a.staff_count,
		a.special_requirements, a.status, a.review_notes, a.reviewed_by, a.reviewed_at,
		a.assigned_booth_id, a.created_at, a.updated_at, x.company_name, e.title
		FROM applications a
		JOIN exhibitors x ON x.id = a.profile_id
		JOIN expos e ON e.id = a.expo_id
		WHERE a.exhibitor_id = ?
		ORDER BY a.created_at DESC`
	return r.queryDetails(ctx, q, exhibitorID)
}

func (r *ApplicationRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]ApplicationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ApplicationDetail, 0)
	for rows.Next() {
		var d ApplicationDetail
		var pref, notes, reqs sql.NullString
		var reviewedBy, boothID sql.NullInt64
		var reviewedAt sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.ExpoID, &d.ExhibitorID, &d.ProfileID, &pref, &d.StaffCount,
			&reqs, &d.Status, &notes, &reviewedBy, &reviewedAt, &boothID,
			&d.CreatedAt, &d.UpdatedAt, &d.CompanyName, &d.ExpoTitle,
		); err != nil {
			return nil, err
		}
		if pref.Valid {
			s := pref.String
			d.BoothPreference = &s
		}
		if reqs.Valid {
			s := reqs.String
			d.SpecialRequirements = &s
		}
		if notes.Valid {
			s := notes.String
			d.ReviewNotes = &s
		}
		if reviewedBy.Valid {
			v := uint64(reviewedBy.Int64)
			d.ReviewedBy = &v
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			d.ReviewedAt = &t
		}
		if boothID.Valid {
			v := uint64(boothID.Int64)
			d.AssignedBoothID = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateByApplicant rewrites the submitted details while the application
// is still pending.  Losing the conditional update means review already
// started (ErrInvalidState) or the application belongs to someone else
// (checked first, ErrForbidden).
func (r *ApplicationRepo) UpdateByApplicant(ctx context.Context, a *model.Application, userID uint64) error {
	var owner uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT exhibitor_id FROM applications WHERE id=?`, a.ID).Scan(&owner); err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET booth_preference=?, staff_count=?, special_requirements=?
		 WHERE id=? AND status='pending'`,
		a.BoothPreference, a.StaffCount, a.SpecialRequirements, a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

// StartReview moves a pending application to under_review on behalf of
// the expo's organizer or an admin.
func (r *ApplicationRepo) StartReview(ctx context.Context, applicationID, callerID uint64, admin bool) error {
	if err := r.checkOrganizer(ctx, applicationID, callerID, admin); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status='under_review' WHERE id=? AND status='pending'`,
		applicationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

// DecideTx records an approve/reject decision within a transaction.  The
// status condition makes the decision first-winner-takes-it: a second
// concurrent decision affects zero rows and returns ErrInvalidState.
func (r *ApplicationRepo) DecideTx(ctx context.Context, tx *sql.Tx, applicationID, reviewerID uint64, decision string, notes *string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE applications SET status=?, review_notes=?, reviewed_by=?, reviewed_at=?
		 WHERE id=? AND status IN ('pending','under_review')`,
		decision, notes, reviewerID, time.Now().UTC(), applicationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

// Cancel withdraws an application on behalf of its applicant.  Only
// undecided applications can be cancelled.
func (r *ApplicationRepo) Cancel(ctx context.Context, applicationID, userID uint64) error {
	var owner uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT exhibitor_id FROM applications WHERE id=?`, applicationID).Scan(&owner); err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status='cancelled' WHERE id=? AND status IN ('pending','under_review')`,
		applicationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

// GetForAssignTx loads and locks the application row for booth
// assignment.  The FOR UPDATE lock keeps a concurrent assignment from
// reading the same previous booth.
func (r *ApplicationRepo) GetForAssignTx(ctx context.Context, tx *sql.Tx, applicationID uint64) (model.Application, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+applicationCols+` FROM applications WHERE id = ? FOR UPDATE`, applicationID)
	return scanApplication(row.Scan)
}

// SetBoothTx points an application at its assigned booth (or clears it
// when boothID is nil) within a transaction.
func (r *ApplicationRepo) SetBoothTx(ctx context.Context, tx *sql.Tx, applicationID uint64, boothID *uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE applications SET assigned_booth_id=? WHERE id=?`, boothID, applicationID)
	return err
}

// checkOrganizer verifies that the caller organizes the expo the
// application targets, or is an admin.  sql.ErrNoRows means the
// application is missing.
func (r *ApplicationRepo) checkOrganizer(ctx context.Context, applicationID, callerID uint64, admin bool) error {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT e.organizer_id FROM applications a JOIN expos e ON e.id = a.expo_id WHERE a.id=?`,
		applicationID).Scan(&actual); err != nil {
		return err
	}
	if !admin && actual != callerID {
		return ErrForbidden
	}
	return nil
}

// CheckOrganizer is the exported form used by handlers that orchestrate
// multi-repo transactions.
func (r *ApplicationRepo) CheckOrganizer(ctx context.Context, applicationID, callerID uint64, admin bool) error {
	return r.checkOrganizer(ctx, applicationID, callerID, admin)
}

// GetApprovedForExpoTx loads and locks the caller's approved application
// for an expo.  Direct booth reservation hangs off this row; the FOR
// UPDATE lock serializes it against concurrent assignments.
func (r *ApplicationRepo) GetApprovedForExpoTx(ctx context.Context, tx *sql.Tx, expoID, userID uint64) (model.Application, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+applicationCols+` FROM applications
		 WHERE expo_id = ? AND exhibitor_id = ? AND status = 'approved' FOR UPDATE`,
		expoID, userID)
	return scanApplication(row.Scan)
}

// ClearBoothRefTx detaches every application that references a booth,
// used when the booth itself is released.
func (r *ApplicationRepo) ClearBoothRefTx(ctx context.Context, tx *sql.Tx, boothID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE applications SET assigned_booth_id=NULL WHERE assigned_booth_id=?`, boothID)
	return err
}

// ApplicationStats aggregates per-status counts for an expo's
// applications.
type ApplicationStats struct {
	Total       uint64 `json:"total"`
	Pending     uint64 `json:"pending"`
	UnderReview uint64 `json:"under_review"`
	Approved    uint64 `json:"approved"`
	Rejected    uint64 `json:"rejected"`
	Cancelled   uint64 `json:"cancelled"`
}

// StatsByExpo returns the application counters of an expo after the
// ownership check.
func (r *ApplicationRepo) StatsByExpo(ctx context.Context, expoID, callerID uint64, admin bool) (ApplicationStats, error) {
	var s ApplicationStats
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM expos WHERE id=?`, expoID).Scan(&actual); err != nil {
		return s, err
	}
	if !admin && actual != callerID {
		return s, ErrForbidden
	}
	const q = `SELECT COUNT(*),
		COALESCE(SUM(status='pending'),0),
		COALESCE(SUM(status='under_review'),0),
		COALESCE(SUM(status='approved'),0),
		COALESCE(SUM(status='rejected'),0),
		COALESCE(SUM(status='cancelled'),0)
		FROM applications WHERE expo_id=?`
	err := r.db.QueryRowContext(ctx, q, expoID).
		Scan(&s.Total, &s.Pending, &s.UnderReview, &s.Approved, &s.Rejected, &s.Cancelled)
	return s, err
}
