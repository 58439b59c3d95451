package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/expo-management/internal/model"
)

// ExhibitorRepo manages exhibitor company profiles and their owned
// product and document records.  Products and documents are keyed by
// generated UUIDs so individual entries can be addressed without
// exposing row ordering.
type ExhibitorRepo struct {
	db *sql.DB
}

// NewExhibitorRepo returns a new ExhibitorRepo bound to the given database.
func NewExhibitorRepo(db *sql.DB) *ExhibitorRepo { return &ExhibitorRepo{db: db} }

// ErrProfileExists is returned when a user already has an exhibitor
// profile; the user_id column carries a unique index.
var ErrProfileExists = errors.New("exhibitor profile already exists")

const exhibitorCols = `id, user_id, company_name, description, industry, website,
	logo_url, contact_phone, company_size, founded_year, is_verified, created_at, updated_at`

func scanExhibitor(scan func(dest ...interface{}) error) (model.Exhibitor, error) {
	var ex model.Exhibitor
	var desc, industry, website, logo, phone, size sql.NullString
	var founded sql.NullInt64
	err := scan(
		&ex.ID, &ex.UserID, &ex.CompanyName, &desc, &industry, &website,
		&logo, &phone, &size, &founded, &ex.IsVerified, &ex.CreatedAt, &ex.UpdatedAt,
	)
	if err != nil {
		return ex, err
	}
	set := func(dst **string, v sql.NullString) {
		if v.Valid {
			s := v.String
			*dst = &s
		}
	}
	set(&ex.Description, desc)
	set(&ex.Industry, industry)
	set(&ex.Website, website)
	set(&ex.LogoURL, logo)
	set(&ex.ContactPhone, phone)
	set(&ex.CompanySize, size)
	if founded.Valid {
		y := uint16(founded.Int64)
		ex.FoundedYear = &y
	}
	return ex, nil
}

// Create inserts a profile for the given user and populates the ID.
func (r *ExhibitorRepo) Create(ctx context.Context, ex *model.Exhibitor) error {
	const q = `INSERT INTO exhibitors (user_id, company_name, description, industry, website,
		logo_url, contact_phone, company_size, founded_year)
		VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		ex.UserID, ex.CompanyName, ex.Description, ex.Industry, ex.Website,
		ex.LogoURL, ex.ContactPhone, ex.CompanySize, ex.FoundedYear)
	if err != nil {
		if isDuplicate(err) {
			return ErrProfileExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ex.ID = uint64(id)
	return nil
}

// GetByUserID loads the profile belonging to a user together with its
// products and documents.
func (r *ExhibitorRepo) GetByUserID(ctx context.Context, userID uint64) (model.Exhibitor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+exhibitorCols+` FROM exhibitors WHERE user_id = ?`, userID)
	ex, err := scanExhibitor(row.Scan)
	if err != nil {
		return ex, err
	}
	return ex, r.loadChildren(ctx, &ex)
}

// GetByID loads a profile by its primary key together with its products
// and documents.
func (r *ExhibitorRepo) GetByID(ctx context.Context, id uint64) (model.Exhibitor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+exhibitorCols+` FROM exhibitors WHERE id = ?`, id)
	ex, err := scanExhibitor(row.Scan)
	if err != nil {
		return ex, err
	}
	return ex, r.loadChildren(ctx, &ex)
}

func (r *ExhibitorRepo) loadChildren(ctx context.Context, ex *model.Exhibitor) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, category, image_url FROM exhibitor_products
		 WHERE exhibitor_id = ? ORDER BY name`, ex.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	ex.Products = make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		var desc, cat, img sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &desc, &cat, &img); err != nil {
			return err
		}
		p.ExhibitorID = ex.ID
		if desc.Valid {
			s := desc.String
			p.Description = &s
		}
		if cat.Valid {
			s := cat.String
			p.Category = &s
		}
		if img.Valid {
			s := img.String
			p.ImageURL = &s
		}
		ex.Products = append(ex.Products, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	drows, err := r.db.QueryContext(ctx,
		`SELECT id, name, url, doc_type, uploaded_at FROM exhibitor_documents
		 WHERE exhibitor_id = ? ORDER BY uploaded_at DESC`, ex.ID)
	if err != nil {
		return err
	}
	defer drows.Close()
	ex.Documents = make([]model.Document, 0)
	for drows.Next() {
		var d model.Document
		var dt sql.NullString
		if err := drows.Scan(&d.ID, &d.Name, &d.URL, &dt, &d.UploadedAt); err != nil {
			return err
		}
		d.ExhibitorID = ex.ID
		if dt.Valid {
			s := dt.String
			d.DocType = &s
		}
		ex.Documents = append(ex.Documents, d)
	}
	return drows.Err()
}

// Update rewrites the profile fields.  Ownership is enforced by keying
// the update on user_id.
func (r *ExhibitorRepo) Update(ctx context.Context, ex *model.Exhibitor) error {
	const q = `UPDATE exhibitors SET company_name=?, description=?, industry=?, website=?,
		logo_url=?, contact_phone=?, company_size=?, founded_year=? WHERE user_id=?`
	res, err := r.db.ExecContext(ctx, q,
		ex.CompanyName, ex.Description, ex.Industry, ex.Website,
		ex.LogoURL, ex.ContactPhone, ex.CompanySize, ex.FoundedYear, ex.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing profile from a no-op update.
		var id uint64
		if err := r.db.QueryRowContext(ctx,
			`SELECT id FROM exhibitors WHERE user_id=?`, ex.UserID).Scan(&id); err != nil {
			return err
		}
	}
	return nil
}

// AddProduct inserts a product under a profile and returns its ID.
func (r *ExhibitorRepo) AddProduct(ctx context.Context, exhibitorID uint64, p *model.Product) error {
	p.ID = uuid.NewString()
	p.ExhibitorID = exhibitorID
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exhibitor_products (id, exhibitor_id, name, description, category, image_url)
		 VALUES (?,?,?,?,?,?)`,
		p.ID, exhibitorID, p.Name, p.Description, p.Category, p.ImageURL)
	return err
}

// DeleteProduct removes a product, scoped to the owning profile.
func (r *ExhibitorRepo) DeleteProduct(ctx context.Context, exhibitorID uint64, productID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exhibitor_products WHERE id=? AND exhibitor_id=?`, productID, exhibitorID)
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

// AddDocument inserts a document under a profile and returns its ID.
func (r *ExhibitorRepo) AddDocument(ctx context.Context, exhibitorID uint64, d *model.Document) error {
	d.ID = uuid.NewString()
	d.ExhibitorID = exhibitorID
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exhibitor_documents (id, exhibitor_id, name, url, doc_type)
		 VALUES (?,?,?,?,?)`,
		d.ID, exhibitorID, d.Name, d.URL, d.DocType)
	return err
}

// DeleteDocument removes a document, scoped to the owning profile.
func (r *ExhibitorRepo) DeleteDocument(ctx context.Context, exhibitorID uint64, documentID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exhibitor_documents WHERE id=? AND exhibitor_id=?`, documentID, exhibitorID)
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

// SetVerified toggles the admin verification flag on a profile.
func (r *ExhibitorRepo) SetVerified(ctx context.Context, exhibitorID uint64, verified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE exhibitors SET is_verified=? WHERE id=?`, verified, exhibitorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var id uint64
		if err := r.db.QueryRowContext(ctx,
			`SELECT id FROM exhibitors WHERE id=?`, exhibitorID).Scan(&id); err != nil {
			return err
		}
	}
	return nil
}

// ListVerified returns verified profiles for the public directory,
// without products or documents.
func (r *ExhibitorRepo) ListVerified(ctx context.Context, limit, offset int) ([]model.Exhibitor, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+exhibitorCols+` FROM exhibitors WHERE is_verified = 1
		 ORDER BY company_name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Exhibitor, 0)
	for rows.Next() {
		ex, err := scanExhibitor(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}
