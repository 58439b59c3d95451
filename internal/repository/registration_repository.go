package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/expo-management/internal/model"
)

// RegistrationRepo provides CRUD operations for expo and session
// registrations.  Session inserts run inside a transaction that locks
// the session row, so the capacity count and the insert are atomic.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a new RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// ErrAlreadyRegistered is returned when the attendee already holds a
// registration for the expo or session.
var ErrAlreadyRegistered = errors.New("already registered")

const registrationCols = `id, expo_id, session_id, attendee_id, registration_type, status,
	amount_cents, paid, payment_method, confirmation_code, check_in_time, rating, comments,
	feedback_at, created_at, updated_at`

func scanRegistration(scan func(dest ...interface{}) error) (model.Registration, error) {
	var g model.Registration
	var sessionID sql.NullInt64
	var method, comments sql.NullString
	var checkIn, feedbackAt sql.NullTime
	var rating sql.NullInt64
	err := scan(
		&g.ID, &g.ExpoID, &sessionID, &g.AttendeeID, &g.RegistrationType, &g.Status,
		&g.AmountCents, &g.Paid, &method, &g.ConfirmationCode, &checkIn, &rating, &comments,
		&feedbackAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return g, err
	}
	if sessionID.Valid {
		v := uint64(sessionID.Int64)
		g.SessionID = &v
	}
	if method.Valid {
		m := method.String
		g.PaymentMethod = &m
	}
	if checkIn.Valid {
		t := checkIn.Time
		g.CheckInTime = &t
	}
	if rating.Valid {
		v := uint8(rating.Int64)
		g.Rating = &v
	}
	if comments.Valid {
		c := comments.String
		g.Comments = &c
	}
	if feedbackAt.Valid {
		t := feedbackAt.Time
		g.FeedbackAt = &t
	}
	return g, nil
}

// CreateExpo inserts an expo-level registration.  The unique
// (expo_id, attendee_id) index maps duplicates to ErrAlreadyRegistered.
func (r *RegistrationRepo) CreateExpo(ctx context.Context, g *model.Registration) error {
	const q = `INSERT INTO registrations (expo_id, attendee_id, registration_type, status,
		amount_cents, paid, payment_method, confirmation_code)
		VALUES (?,?,'expo','registered',?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		g.ExpoID, g.AttendeeID, g.AmountCents, g.Paid, g.PaymentMethod, g.ConfirmationCode)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyRegistered
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	g.RegistrationType = model.RegistrationTypeExpo
	g.Status = model.RegistrationStatusRegistered
	return nil
}

// CountForSessionTx counts the seat-consuming registrations of a session
// inside a transaction.  Callers lock the session row first so the count
// cannot move before the insert commits.
func (r *RegistrationRepo) CountForSessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (uint32, error) {
	var n uint32
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE session_id=? AND status IN ('registered','confirmed')`,
		sessionID).Scan(&n)
	return n, err
}

// CreateSessionTx inserts a session registration within a transaction.
// Duplicates on (session_id, attendee_id) map to ErrAlreadyRegistered.
func (r *RegistrationRepo) CreateSessionTx(ctx context.Context, tx *sql.Tx, g *model.Registration) error {
	const q = `INSERT INTO registrations (expo_id, session_id, attendee_id, registration_type, status,
		amount_cents, paid, payment_method, confirmation_code)
		VALUES (?,?,?,'session','registered',?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		g.ExpoID, g.SessionID, g.AttendeeID, g.AmountCents, g.Paid, g.PaymentMethod, g.ConfirmationCode)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyRegistered
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	g.RegistrationType = model.RegistrationTypeSession
	g.Status = model.RegistrationStatusRegistered
	return nil
}

// GetByID returns a single registration.
func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (model.Registration, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+registrationCols+` FROM registrations WHERE id = ?`, id)
	return scanRegistration(row.Scan)
}

// RegistrationDetail joins expo and session titles onto a registration
// for attendee list views.
type RegistrationDetail struct {
	model.Registration
	ExpoTitle    string  `json:"expo_title"`
	SessionTitle *string `json:"session_title,omitempty"`
}

// ListByAttendee returns all registrations of a user, newest first.
func (r *RegistrationRepo) ListByAttendee(ctx context.Context, attendeeID uint64) ([]RegistrationDetail, error) {
	const q = `SELECT g.id, g.expo_id, g.session_id, g.attendee_id, g.registration_type, g.status,
		g.amount_cents, g.paid, g.payment_method, g.confirmation_code, g.check_in_time, g.rating,
		g.comments, g.feedback_at, g.created_at, g.updated_at, e.title, s.title
		FROM registrations g
		JOIN expos e ON e.id = g.expo_id
		LEFT JOIN sessions s ON s.id = g.session_id
		WHERE g.attendee_id = ?
		ORDER BY g.created_at DESC`
	return r.queryDetails(ctx, q, attendeeID)
}

// ListByExpoForOrganizer returns an expo's registrations after verifying
// that the caller owns the expo or is an admin.
func (r *RegistrationRepo) ListByExpoForOrganizer(ctx context.Context, expoID, callerID uint64, admin bool) ([]RegistrationDetail, error) {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM expos WHERE id=?`, expoID).Scan(&actual); err != nil {
		return nil, err
	}
	if !admin && actual != callerID {
		return nil, ErrForbidden
	}
	const q = `SELECT g.id, g.expo_id, g.session_id, g.attendee_id, g.registration_type, g.status,
		g.amount_cents, g.paid, g.payment_method, g.confirmation_code, g.check_in_time, g.rating,
		g.comments, g.feedback_at, g.created_at, g.updated_at, e.title, s.title
		FROM registrations g
		JOIN expos e ON e.id = g.expo_id
		LEFT JOIN sessions s ON s.id = g.session_id
		WHERE g.expo_id = ?
		ORDER BY g.created_at DESC`
	return r.queryDetails(ctx, q, expoID)
}

func (r *RegistrationRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]RegistrationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RegistrationDetail, 0)
	for rows.Next() {
		var d RegistrationDetail
		var sessionID sql.NullInt64
		var method, comments, sessionTitle sql.NullString
		var checkIn, feedbackAt sql.NullTime
		var rating sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.ExpoID, &sessionID, &d.AttendeeID, &d.RegistrationType, &d.Status,
			&d.AmountCents, &d.Paid, &method, &d.ConfirmationCode, &checkIn, &rating,
			&comments, &feedbackAt, &d.CreatedAt, &d.UpdatedAt, &d.ExpoTitle, &sessionTitle,
		); err != nil {
			return nil, err
		}
		if sessionID.Valid {
			v := uint64(sessionID.Int64)
			d.SessionID = &v
		}
		if method.Valid {
			m := method.String
			d.PaymentMethod = &m
		}
		if checkIn.Valid {
			t := checkIn.Time
			d.CheckInTime = &t
		}
		if rating.Valid {
			v := uint8(rating.Int64)
			d.Rating = &v
		}
		if comments.Valid {
			c := comments.String
			d.Comments = &c
		}
		if feedbackAt.Valid {
			t := feedbackAt.Time
			d.FeedbackAt = &t
		}
		if sessionTitle.Valid {
			t := sessionTitle.String
			d.SessionTitle = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cancel marks the attendee's registration cancelled.  Attended
// registrations cannot be cancelled; the conditional update returns
// ErrInvalidState in that case.
func (r *RegistrationRepo) Cancel(ctx context.Context, registrationID, attendeeID uint64) error {
	if err := r.checkOwner(ctx, registrationID, attendeeID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status='cancelled' WHERE id=? AND status <> 'attended'`,
		registrationID)
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

// Confirm moves a registered registration to confirmed, typically after
// payment settles.
func (r *RegistrationRepo) Confirm(ctx context.Context, registrationID uint64, method string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status='confirmed', paid=1, payment_method=?
		 WHERE id=? AND status='registered'`,
		method, registrationID)
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

// CheckInForOrganizer marks a registration attended on behalf of the
// expo's organizer or an admin.  Cancelled registrations cannot check
// in.
func (r *RegistrationRepo) CheckInForOrganizer(ctx context.Context, registrationID, callerID uint64, admin bool) error {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT e.organizer_id FROM registrations g JOIN expos e ON e.id = g.expo_id WHERE g.id=?`,
		registrationID).Scan(&actual); err != nil {
		return err
	}
	if !admin && actual != callerID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status='attended', check_in_time=?
		 WHERE id=? AND status <> 'cancelled' AND status <> 'attended'`,
		time.Now().UTC(), registrationID)
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

// SaveFeedback records a rating and optional comments.  Feedback is only
// accepted on attended registrations owned by the caller.
func (r *RegistrationRepo) SaveFeedback(ctx context.Context, registrationID, attendeeID uint64, rating uint8, comments *string) error {
	if err := r.checkOwner(ctx, registrationID, attendeeID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET rating=?, comments=?, feedback_at=?
		 WHERE id=? AND status='attended'`,
		rating, comments, time.Now().UTC(), registrationID)
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

func (r *RegistrationRepo) checkOwner(ctx context.Context, registrationID, attendeeID uint64) error {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT attendee_id FROM registrations WHERE id=?`, registrationID).Scan(&actual); err != nil {
		return err
	}
	if actual != attendeeID {
		return ErrForbidden
	}
	return nil
}

// RegistrationStats aggregates per-status counts and settled revenue
// for an expo's registrations.
type RegistrationStats struct {
	Total        uint64 `json:"total"`
	Registered   uint64 `json:"registered"`
	Confirmed    uint64 `json:"confirmed"`
	Attended     uint64 `json:"attended"`
	Cancelled    uint64 `json:"cancelled"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// StatsByExpo returns the registration counters of an expo after the
// ownership check.  Revenue only counts paid rows.
func (r *RegistrationRepo) StatsByExpo(ctx context.Context, expoID, callerID uint64, admin bool) (RegistrationStats, error) {
	var s RegistrationStats
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM expos WHERE id=?`, expoID).Scan(&actual); err != nil {
		return s, err
	}
	if !admin && actual != callerID {
		return s, ErrForbidden
	}
	const q = `SELECT COUNT(*),
		COALESCE(SUM(status='registered'),0),
		COALESCE(SUM(status='confirmed'),0),
		COALESCE(SUM(status='attended'),0),
		COALESCE(SUM(status='cancelled'),0),
		COALESCE(SUM(IF(paid, amount_cents, 0)),0)
		FROM registrations WHERE expo_id=?`
	err := r.db.QueryRowContext(ctx, q, expoID).
		Scan(&s.Total, &s.Registered, &s.Confirmed, &s.Attended, &s.Cancelled, &s.RevenueCents)
	return s, err
}
