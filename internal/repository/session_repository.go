package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/expo-management/internal/model"
)

// SessionRepo provides CRUD operations for expo programme sessions and
// their speaker and material child records.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionCols = `id, expo_id, title, description, session_type, starts_at, ends_at,
	room, capacity, max_attendees, registration_required, fee_cents, status, created_at, updated_at`

func scanSession(scan func(dest ...interface{}) error) (model.Session, error) {
	var s model.Session
	var desc sql.NullString
	var maxAtt sql.NullInt64
	err := scan(
		&s.ID, &s.ExpoID, &s.Title, &desc, &s.SessionType, &s.StartsAt, &s.EndsAt,
		&s.Room, &s.Capacity, &maxAtt, &s.RegistrationRequired, &s.FeeCents, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	if desc.Valid {
		d := desc.String
		s.Description = &d
	}
	if maxAtt.Valid {
		m := uint32(maxAtt.Int64)
		s.MaxAttendees = &m
	}
	return s, nil
}

// Create inserts a session and populates the generated ID.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (expo_id, title, description, session_type, starts_at, ends_at,
		room, capacity, max_attendees, registration_required, fee_cents, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		s.ExpoID, s.Title, s.Description, s.SessionType, s.StartsAt, s.EndsAt,
		s.Room, s.Capacity, s.MaxAttendees, s.RegistrationRequired, s.FeeCents, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID returns a session with its speakers and materials loaded.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row.Scan)
	if err != nil {
		return s, err
	}
	return s, r.loadChildren(ctx, &s)
}

// GetForRegistrationTx loads and locks a session row for a registration
// insert.  The FOR UPDATE lock serializes concurrent registrations
// against the capacity count.
func (r *SessionRepo) GetForRegistrationTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Session, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = ? FOR UPDATE`, id)
	return scanSession(row.Scan)
}

// ListByExpo returns the sessions of an expo in programme order with
// speakers and materials populated.
func (r *SessionRepo) ListByExpo(ctx context.Context, expoID uint64) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE expo_id = ? ORDER BY starts_at`, expoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SessionRepo) loadChildren(ctx context.Context, s *model.Session) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, title, company, bio FROM session_speakers WHERE session_id=? ORDER BY name`,
		s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	s.Speakers = make([]model.Speaker, 0)
	for rows.Next() {
		var sp model.Speaker
		var title, company, bio sql.NullString
		if err := rows.Scan(&sp.ID, &sp.Name, &title, &company, &bio); err != nil {
			return err
		}
		if title.Valid {
			v := title.String
			sp.Title = &v
		}
		if company.Valid {
			v := company.String
			sp.Company = &v
		}
		if bio.Valid {
			v := bio.String
			sp.Bio = &v
		}
		s.Speakers = append(s.Speakers, sp)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	mrows, err := r.db.QueryContext(ctx,
		`SELECT id, name, url, material_type FROM session_materials WHERE session_id=? ORDER BY name`,
		s.ID)
	if err != nil {
		return err
	}
	defer mrows.Close()
	s.Materials = make([]model.Material, 0)
	for mrows.Next() {
		var m model.Material
		if err := mrows.Scan(&m.ID, &m.Name, &m.URL, &m.MaterialType); err != nil {
			return err
		}
		s.Materials = append(s.Materials, m)
	}
	return mrows.Err()
}

// Update rewrites the mutable fields of a session.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	const q = `UPDATE sessions SET title=?, description=?, session_type=?, starts_at=?, ends_at=?,
		room=?, capacity=?, max_attendees=?, registration_required=?, fee_cents=?, status=?
		WHERE id=?`
	_, err := r.db.ExecContext(ctx, q,
		s.Title, s.Description, s.SessionType, s.StartsAt, s.EndsAt,
		s.Room, s.Capacity, s.MaxAttendees, s.RegistrationRequired, s.FeeCents, s.Status, s.ID)
	return err
}

// Delete removes a session that has no seat-consuming registrations.
func (r *SessionRepo) Delete(ctx context.Context, sessionID uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE session_id=? AND status IN ('registered','confirmed')`,
		sessionID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CheckOrganizer verifies that the caller organizes the expo the session
// belongs to.  Admins skip the ownership comparison.
func (r *SessionRepo) CheckOrganizer(ctx context.Context, sessionID, callerID uint64, admin bool) error {
	var actual uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT e.organizer_id FROM sessions s JOIN expos e ON e.id = s.expo_id WHERE s.id=?`,
		sessionID).Scan(&actual); err != nil {
		return err
	}
	if !admin && actual != callerID {
		return ErrForbidden
	}
	return nil
}

// SearchPublic finds sessions of published public expos matching the query
// against the title and description. An empty query lists nothing.
func (r *SessionRepo) SearchPublic(ctx context.Context, query string, limit int) ([]model.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	like := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.expo_id, s.title, s.description, s.session_type, s.starts_at, s.ends_at,
		s.room, s.capacity, s.max_attendees, s.registration_required, s.fee_cents, s.status,
		s.created_at, s.updated_at
		FROM sessions s
		JOIN expos e ON e.id = s.expo_id
		WHERE e.is_public = 1 AND e.status <> 'draft'
		  AND (s.title LIKE ? OR s.description LIKE ?)
		ORDER BY s.starts_at LIMIT ?`,
		like, like, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AddSpeaker inserts a speaker under a session.
func (r *SessionRepo) AddSpeaker(ctx context.Context, sessionID uint64, sp *model.Speaker) error {
	sp.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_speakers (id, session_id, name, title, company, bio) VALUES (?,?,?,?,?,?)`,
		sp.ID, sessionID, sp.Name, sp.Title, sp.Company, sp.Bio)
	return err
}

// RemoveSpeaker deletes a speaker, scoped to its session.
func (r *SessionRepo) RemoveSpeaker(ctx context.Context, sessionID uint64, speakerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM session_speakers WHERE id=? AND session_id=?`, speakerID, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddMaterial inserts a material under a session.
func (r *SessionRepo) AddMaterial(ctx context.Context, sessionID uint64, m *model.Material) error {
	m.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_materials (id, session_id, name, url, material_type) VALUES (?,?,?,?,?)`,
		m.ID, sessionID, m.Name, m.URL, m.MaterialType)
	return err
}

// RemoveMaterial deletes a material, scoped to its session.
func (r *SessionRepo) RemoveMaterial(ctx context.Context, sessionID uint64, materialID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM session_materials WHERE id=? AND session_id=?`, materialID, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
