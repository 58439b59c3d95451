package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/expo-management/internal/model"
)

// ExpoRepo provides CRUD operations for expos.  Public listing filters
// and pagination live here so handlers stay thin.  All timestamp fields
// are assumed to be stored in UTC.
type ExpoRepo struct {
	db *sql.DB
}

// NewExpoRepo returns a new ExpoRepo bound to the given database.
func NewExpoRepo(db *sql.DB) *ExpoRepo { return &ExpoRepo{db: db} }

const expoCols = `id, organizer_id, title, description, theme, start_date, end_date,
	venue, address, city, country, status, max_exhibitors, max_attendees,
	registration_deadline, exhibitor_fee_cents, attendee_fee_cents, is_public,
	created_at, updated_at`

func scanExpo(scan func(dest ...interface{}) error) (model.Expo, error) {
	var e model.Expo
	var theme sql.NullString
	var deadline sql.NullTime
	err := scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &theme, &e.StartDate, &e.EndDate,
		&e.Venue, &e.Address, &e.City, &e.Country, &e.Status, &e.MaxExhibitors, &e.MaxAttendees,
		&deadline, &e.ExhibitorFeeCents, &e.AttendeeFeeCents, &e.IsPublic,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}
	if theme.Valid {
		t := theme.String
		e.Theme = &t
	}
	if deadline.Valid {
		d := deadline.Time
		e.RegistrationDeadline = &d
	}
	return e, nil
}

// Create inserts a new expo and populates the generated ID.
func (r *ExpoRepo) Create(ctx context.Context, e *model.Expo) error {
	const q = `INSERT INTO expos (organizer_id, title, description, theme, start_date, end_date,
		venue, address, city, country, status, max_exhibitors, max_attendees,
		registration_deadline, exhibitor_fee_cents, attendee_fee_cents, is_public)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		e.OrganizerID, e.Title, e.Description, e.Theme, e.StartDate, e.EndDate,
		e.Venue, e.Address, e.City, e.Country, e.Status, e.MaxExhibitors, e.MaxAttendees,
		e.RegistrationDeadline, e.ExhibitorFeeCents, e.AttendeeFeeCents, e.IsPublic)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID returns a single expo.  sql.ErrNoRows is returned when the
// expo does not exist.
func (r *ExpoRepo) GetByID(ctx context.Context, id uint64) (model.Expo, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expoCols+` FROM expos WHERE id = ?`, id)
	return scanExpo(row.Scan)
}

// ExpoFilter narrows ListPublic results.  Zero values mean "no filter".
type ExpoFilter struct {
	Status string // filter by status
	City   string // filter by city
	Search string // substring match against title and theme
	Limit  int
	Offset int
}

// ListPublic returns public expos visible to browsers, newest start date
// first.  Draft expos never appear regardless of the status filter.
func (r *ExpoRepo) ListPublic(ctx context.Context, f ExpoFilter) ([]model.Expo, error) {
	q := `SELECT ` + expoCols + ` FROM expos WHERE is_public = 1 AND status <> 'draft'`
	args := []interface{}{}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.City != "" {
		q += ` AND city = ?`
		args = append(args, f.City)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q += ` AND (title LIKE ? OR theme LIKE ?)`
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	q += ` ORDER BY start_date DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)
	return r.queryExpos(ctx, q, args...)
}

// ListByOrganizer returns all expos owned by the given organizer,
// including drafts, newest first.
func (r *ExpoRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Expo, error) {
	const q = `SELECT ` + expoCols + ` FROM expos WHERE organizer_id = ? ORDER BY created_at DESC`
	return r.queryExpos(ctx, q, organizerID)
}

func (r *ExpoRepo) queryExpos(ctx context.Context, q string, args ...interface{}) ([]model.Expo, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Expo, 0)
	for rows.Next() {
		e, err := scanExpo(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of an expo owned by the caller.
// It returns ErrForbidden when the expo belongs to someone else and
// sql.ErrNoRows when it does not exist.  Admins may edit any expo.
func (r *ExpoRepo) Update(ctx context.Context, callerID uint64, admin bool, e *model.Expo) error {
	if err := r.checkOwner(ctx, e.ID, callerID, admin); err != nil {
		return err
	}
	const q = `UPDATE expos SET title=?, description=?, theme=?, start_date=?, end_date=?,
		venue=?, address=?, city=?, country=?, max_exhibitors=?, max_attendees=?,
		registration_deadline=?, exhibitor_fee_cents=?, attendee_fee_cents=?, is_public=?
		WHERE id=?`
	_, err := r.db.ExecContext(ctx, q,
		e.Title, e.Description, e.Theme, e.StartDate, e.EndDate,
		e.Venue, e.Address, e.City, e.Country, e.MaxExhibitors, e.MaxAttendees,
		e.RegistrationDeadline, e.ExhibitorFeeCents, e.AttendeeFeeCents, e.IsPublic,
		e.ID)
	return err
}

// UpdateStatus moves an expo to a new status after verifying ownership.
func (r *ExpoRepo) UpdateStatus(ctx context.Context, expoID, callerID uint64, admin bool, status string) error {
	if err := r.checkOwner(ctx, expoID, callerID, admin); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE expos SET status=? WHERE id=?`, status, expoID)
	return err
}

// Delete removes an expo.  Deletion is refused with ErrConflict while
// applications or registrations still reference the expo.
func (r *ExpoRepo) Delete(ctx context.Context, expoID, callerID uint64, admin bool) error {
	if err := r.checkOwner(ctx, expoID, callerID, admin); err != nil {
		return err
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM applications WHERE expo_id=?) +
		        (SELECT COUNT(*) FROM registrations WHERE expo_id=?)`,
		expoID, expoID).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM expos WHERE id=?`, expoID)
	return err
}

// checkOwner loads the organizer of an expo and compares it against the
// caller.  It returns sql.ErrNoRows when the expo is missing and
// ErrForbidden on an ownership mismatch.  Admins skip the comparison
// but still get sql.ErrNoRows for a missing expo.
func (r *ExpoRepo) checkOwner(ctx context.Context, expoID, callerID uint64, admin bool) error {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM expos WHERE id=?`, expoID).Scan(&actual); err != nil {
		return err
	}
	if !admin && actual != callerID {
		return ErrForbidden
	}
	return nil
}

// Stats aggregates headline counts for an organizer's expo dashboard.
type ExpoStats struct {
	Applications  uint64 `json:"applications"`
	Approved      uint64 `json:"approved_applications"`
	Booths        uint64 `json:"booths"`
	BoothsTaken   uint64 `json:"booths_taken"`
	Registrations uint64 `json:"registrations"`
	Sessions      uint64 `json:"sessions"`
}

// GetStats returns the dashboard counters for an expo after verifying
// ownership.
func (r *ExpoRepo) GetStats(ctx context.Context, expoID, callerID uint64, admin bool) (ExpoStats, error) {
	var s ExpoStats
	if err := r.checkOwner(ctx, expoID, callerID, admin); err != nil {
		return s, err
	}
	const q = `SELECT
		(SELECT COUNT(*) FROM applications WHERE expo_id=?),
		(SELECT COUNT(*) FROM applications WHERE expo_id=? AND status='approved'),
		(SELECT COUNT(*) FROM booths WHERE expo_id=?),
		(SELECT COUNT(*) FROM booths WHERE expo_id=? AND status IN ('reserved','occupied')),
		(SELECT COUNT(*) FROM registrations WHERE expo_id=? AND status IN ('registered','confirmed','attended')),
		(SELECT COUNT(*) FROM sessions WHERE expo_id=?)`
	err := r.db.QueryRowContext(ctx, q, expoID, expoID, expoID, expoID, expoID, expoID).
		Scan(&s.Applications, &s.Approved, &s.Booths, &s.BoothsTaken, &s.Registrations, &s.Sessions)
	return s, err
}
