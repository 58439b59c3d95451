package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/expo-management/internal/model"
)

// BoothRepo provides CRUD operations for booths and the state
// transitions used by the assignment workflow.  Reserve and release run
// inside caller-provided transactions so the application row and the
// booth row always change together.
type BoothRepo struct {
	db *sql.DB
}

// NewBoothRepo returns a new BoothRepo bound to the given database.
func NewBoothRepo(db *sql.DB) *BoothRepo { return &BoothRepo{db: db} }

// ErrBoothNumberExists is returned when a booth number collides with an
// existing booth in the same expo.
var ErrBoothNumberExists = errors.New("booth number already exists in this expo")

// ErrBoothUnavailable is returned when a reservation attempt loses the
// race for a booth or targets one that is not available.
var ErrBoothUnavailable = errors.New("booth is not available")

const boothCols = `id, expo_id, booth_number, width, height, area, floor, zone,
	price_cents, category, status, exhibitor_id, reserved_at, is_active, created_at, updated_at`

func scanBooth(scan func(dest ...interface{}) error) (model.Booth, error) {
	var b model.Booth
	var zone sql.NullString
	var exhibitorID sql.NullInt64
	var reservedAt sql.NullTime
	err := scan(
		&b.ID, &b.ExpoID, &b.BoothNumber, &b.Width, &b.Height, &b.Area, &b.Floor, &zone,
		&b.PriceCents, &b.Category, &b.Status, &exhibitorID, &reservedAt, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return b, err
	}
	if zone.Valid {
		z := zone.String
		b.Zone = &z
	}
	if exhibitorID.Valid {
		id := uint64(exhibitorID.Int64)
		b.ExhibitorID = &id
	}
	if reservedAt.Valid {
		t := reservedAt.Time
		b.ReservedAt = &t
	}
	return b, nil
}

// Create inserts a booth.  The area column is always written from the
// dimensions so it never drifts from width * height.
func (r *BoothRepo) Create(ctx context.Context, b *model.Booth) error {
	b.Area = model.DerivedArea(b.Width, b.Height)
	const q = `INSERT INTO booths (expo_id, booth_number, width, height, area, floor, zone,
		price_cents, category, status, is_active)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		b.ExpoID, b.BoothNumber, b.Width, b.Height, b.Area, b.Floor, b.Zone,
		b.PriceCents, b.Category, b.Status, b.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return ErrBoothNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID returns a single booth.
func (r *BoothRepo) GetByID(ctx context.Context, id uint64) (model.Booth, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+boothCols+` FROM booths WHERE id = ?`, id)
	return scanBooth(row.Scan)
}

// BoothFilter narrows ListByExpo results.  Zero values mean "no filter".
type BoothFilter struct {
	Status   string
	Category string
	Floor    string
}

// ListByExpo returns the booths of an expo ordered by booth number.
func (r *BoothRepo) ListByExpo(ctx context.Context, expoID uint64, f BoothFilter) ([]model.Booth, error) {
	q := `SELECT ` + boothCols + ` FROM booths WHERE expo_id = ?`
	args := []interface{}{expoID}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Floor != "" {
		q += ` AND floor = ?`
		args = append(args, f.Floor)
	}
	q += ` ORDER BY booth_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booth, 0)
	for rows.Next() {
		b, err := scanBooth(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update rewrites the descriptive fields of a booth.  Status and
// exhibitor assignment are never touched here; those go through the
// reservation methods.  Duplicate booth numbers map to
// ErrBoothNumberExists.
func (r *BoothRepo) Update(ctx context.Context, b *model.Booth) error {
	b.Area = model.DerivedArea(b.Width, b.Height)
	const q = `UPDATE booths SET booth_number=?, width=?, height=?, area=?, floor=?, zone=?,
		price_cents=?, category=?, is_active=? WHERE id=?`
	_, err := r.db.ExecContext(ctx, q,
		b.BoothNumber, b.Width, b.Height, b.Area, b.Floor, b.Zone,
		b.PriceCents, b.Category, b.IsActive, b.ID)
	if isDuplicate(err) {
		return ErrBoothNumberExists
	}
	return err
}

// SetMaintenance toggles a booth in or out of maintenance.  Reserved and
// occupied booths cannot be put into maintenance; the conditional update
// loses and ErrConflict is returned.
func (r *BoothRepo) SetMaintenance(ctx context.Context, boothID uint64, on bool) error {
	var res sql.Result
	var err error
	if on {
		res, err = r.db.ExecContext(ctx,
			`UPDATE booths SET status='maintenance' WHERE id=? AND status='available'`, boothID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE booths SET status='available' WHERE id=? AND status='maintenance'`, boothID)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes a booth that is neither reserved nor occupied.  The
// state check and the delete are a single conditional statement so a
// concurrent reservation cannot slip in between.
func (r *BoothRepo) Delete(ctx context.Context, boothID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM booths WHERE id=? AND status NOT IN ('reserved','occupied')`, boothID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the booth is missing or it is still assigned.
		var exists int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM booths WHERE id=?`, boothID).Scan(&exists); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// ReserveTx atomically claims a booth for an exhibitor within the given
// transaction.  The conditional update only succeeds while the booth is
// active and available; losing the race returns ErrBoothUnavailable.
func (r *BoothRepo) ReserveTx(ctx context.Context, tx *sql.Tx, boothID, exhibitorID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE booths SET status='reserved', exhibitor_id=?, reserved_at=?
		 WHERE id=? AND status='available' AND is_active=1`,
		exhibitorID, time.Now().UTC(), boothID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBoothUnavailable
	}
	return nil
}

// ReleaseTx returns a booth to the available pool, clearing the
// exhibitor reference and reservation timestamp together.
func (r *BoothRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, boothID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE booths SET status='available', exhibitor_id=NULL, reserved_at=NULL
		 WHERE id=? AND status IN ('reserved','occupied')`, boothID)
	return err
}

// OccupyTx marks a reserved booth as occupied, used when the exhibitor
// checks in on site.  Only the reserving exhibitor's booth transitions.
func (r *BoothRepo) OccupyTx(ctx context.Context, tx *sql.Tx, boothID, exhibitorID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE booths SET status='occupied' WHERE id=? AND exhibitor_id=? AND status='reserved'`,
		boothID, exhibitorID)
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
