// This file defines the MySQL implementation of the fitness center store.
// All statements are parameterised; the only dynamic SQL is the WHERE and
// ORDER BY built by CenterQuery from an allowlist of columns.

package repository

import (
	"context"      // context carries deadlines into every DB call
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to match sql.ErrNoRows
	"time"         // time stamps created_at and updated_at

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

// CenterStore is the query interface handlers use to reach fitness center
// records.  CenterRepo and MemoryCenterStore both implement it.
type CenterStore interface {
	Create(ctx context.Context, fc *model.FitnessCenter) error
	GetByID(ctx context.Context, id uint64) (*model.FitnessCenter, error)
	List(ctx context.Context, q CenterQuery) ([]*model.FitnessCenter, error)
	Update(ctx context.Context, fc *model.FitnessCenter) error
	Delete(ctx context.Context, id uint64) error
	NameExists(ctx context.Context, name string, excludeID uint64) (bool, error)
}

const centerColumns = "id, name, address, monthly_fee, total_sessions, category, facilities, owner_id, is_verified, established_date, created_at, updated_at"

// CenterRepo encapsulates all database queries related to fitness centers.
// It depends on a sql.DB connection which should be configured elsewhere.
type CenterRepo struct {
	db  *sql.DB          // db is the underlying database connection pool
	now func() time.Time // now stamps created_at/updated_at; replaceable in tests
}

// NewCenterRepo constructs a CenterRepo with the provided DB handle.
func NewCenterRepo(db *sql.DB) *CenterRepo {
	return &CenterRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new fitness center.  On success the ID, CreatedAt and
// UpdatedAt fields are populated.  A name collision returns ErrDuplicateName.
func (r *CenterRepo) Create(ctx context.Context, fc *model.FitnessCenter) error {
	now := r.now()
	const q = `INSERT INTO fitness_centers
	           (name, address, monthly_fee, total_sessions, category, facilities, owner_id, is_verified, established_date, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		fc.Name, fc.Address, fc.MonthlyFee, fc.TotalSessions, string(fc.Category), fc.Facilities,
		fc.OwnerID, fc.IsVerified, fc.EstablishedDate.Format(model.DateLayout), now, now)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrDuplicateName
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fc.ID = uint64(id)
	fc.CreatedAt = now
	fc.UpdatedAt = now
	return nil
}

// GetByID fetches a fitness center by its ID.  It returns ErrNotFound if no
// row is found.
func (r *CenterRepo) GetByID(ctx context.Context, id uint64) (*model.FitnessCenter, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+centerColumns+" FROM fitness_centers WHERE id = ?", id)
	fc, err := scanCenter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fc, nil
}

// List returns every fitness center matching q in the requested order.
// There is no pagination; the full result set is materialised.
func (r *CenterRepo) List(ctx context.Context, q CenterQuery) ([]*model.FitnessCenter, error) {
	where, args := q.whereClause()
	rows, err := r.db.QueryContext(ctx, "SELECT "+centerColumns+" FROM fitness_centers"+where+q.orderClause(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.FitnessCenter{}
	for rows.Next() {
		fc, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes every mutable column of fc and refreshes updated_at.  The
// owner and created_at columns are never touched.  It returns ErrNotFound
// when the row disappeared and ErrDuplicateName on a name collision.
func (r *CenterRepo) Update(ctx context.Context, fc *model.FitnessCenter) error {
	now := r.now()
	const q = `UPDATE fitness_centers
	           SET name = ?, address = ?, monthly_fee = ?, total_sessions = ?, category = ?,
	               facilities = ?, is_verified = ?, established_date = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		fc.Name, fc.Address, fc.MonthlyFee, fc.TotalSessions, string(fc.Category),
		fc.Facilities, fc.IsVerified, fc.EstablishedDate.Format(model.DateLayout), now, fc.ID)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrDuplicateName
		}
		return err
	}
	// The DSN sets clientFoundRows, so matched-but-unchanged rows count.
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	fc.UpdatedAt = now
	return nil
}

// Delete removes a fitness center by ID.  It returns ErrNotFound when no
// row was deleted.
func (r *CenterRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM fitness_centers WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// NameExists reports whether another center already uses name.  excludeID
// lets an update keep its own name; pass 0 on create.
func (r *CenterRepo) NameExists(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM fitness_centers WHERE name = ? AND id <> ?", name, excludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCenter(s rowScanner) (*model.FitnessCenter, error) {
	var (
		fc       model.FitnessCenter
		category string
	)
	if err := s.Scan(&fc.ID, &fc.Name, &fc.Address, &fc.MonthlyFee, &fc.TotalSessions, &category,
		&fc.Facilities, &fc.OwnerID, &fc.IsVerified, &fc.EstablishedDate, &fc.CreatedAt, &fc.UpdatedAt); err != nil {
		return nil, err
	}
	fc.Category = model.Category(category)
	return &fc, nil
}
