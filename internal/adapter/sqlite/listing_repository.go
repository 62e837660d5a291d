package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// Compile-time check: ListingRepository implements domain.ListingRepository.
var _ domain.ListingRepository = (*ListingRepository)(nil)

const (
	assetImage    = "image"
	assetDocument = "document"
)

const listingColumns = `id, owner_id, status, title, location, property_type, area_size, price, created_at, updated_at`

// ListingRepository implements domain.ListingRepository using SQLite.
// Status writes are conditional on the stored status, which makes each
// transition a compare-and-swap.
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository returns a repository over an opened and migrated database.
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l domain.Listing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "beginning listing insert", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO listings (`+listingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, string(l.Status),
		l.Attributes.Title, l.Attributes.Location, l.Attributes.PropertyType,
		l.Attributes.AreaSize, l.Attributes.Price,
		l.CreatedAt.Format(timeFormat),
		l.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return &domain.StorageError{Op: "inserting listing", Err: err}
	}

	if err := insertAssets(ctx, tx, l.ID, assetImage, l.Assets.Images); err != nil {
		return err
	}
	if err := insertAssets(ctx, tx, l.ID, assetDocument, l.Assets.Documents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "committing listing insert", Err: err}
	}
	return nil
}

func insertAssets(ctx context.Context, tx *sql.Tx, listingID, kind string, refs []string) error {
	for i, ref := range refs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO listing_assets (listing_id, kind, position, ref) VALUES (?, ?, ?, ?)`,
			listingID, kind, i, ref,
		)
		if err != nil {
			return &domain.StorageError{Op: "inserting listing asset", Err: err}
		}
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	return getListing(ctx, r.db, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getListing(ctx context.Context, q querier, id string) (domain.Listing, error) {
	l, err := scanListing(q.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id,
	))
	if err != nil {
		return domain.Listing{}, err
	}

	if err := loadAssets(ctx, q, []*domain.Listing{&l}); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	var where []string
	var args []any

	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.OwnerID != "" {
		where = append(where, `owner_id = ?`)
		args = append(args, filter.OwnerID)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}

	query += ` ORDER BY created_at ASC, rowid ASC`

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "listing listings", Err: err}
	}

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, &domain.StorageError{Op: "iterating listings", Err: err}
	}
	// Release the connection before loading assets.
	rows.Close()

	ptrs := make([]*domain.Listing, len(listings))
	for i := range listings {
		ptrs[i] = &listings[i]
	}
	if err := loadAssets(ctx, r.db, ptrs); err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *ListingRepository) ApplyTransition(ctx context.Context, id string, from, to domain.Status) (domain.Listing, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Listing{}, &domain.StorageError{Op: "beginning transition", Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx,
		`UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC().Format(timeFormat), id, string(from),
	)
	if err != nil {
		return domain.Listing{}, &domain.StorageError{Op: "updating listing status", Err: err}
	}

	n, err := result.RowsAffected()
	if err != nil {
		return domain.Listing{}, &domain.StorageError{Op: "checking rows affected", Err: err}
	}

	listing, err := getListing(ctx, tx, id)
	if err != nil {
		return domain.Listing{}, err
	}

	if n == 0 {
		return domain.Listing{}, &domain.ConcurrentModificationError{
			ID:       id,
			Expected: from,
			Actual:   listing.Status,
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Listing{}, &domain.StorageError{Op: "committing transition", Err: err}
	}
	return listing, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM listings WHERE id = ? AND status = ?`,
		id, string(domain.StatusSubmittedForReview),
	)
	if err != nil {
		return &domain.StorageError{Op: "deleting listing", Err: err}
	}

	n, err := result.RowsAffected()
	if err != nil {
		return &domain.StorageError{Op: "checking rows affected", Err: err}
	}
	if n > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &domain.InvalidStateError{ID: id, Current: current.Status}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var status, createdAt, updatedAt string

	err := row.Scan(&l.ID, &l.OwnerID, &status,
		&l.Attributes.Title, &l.Attributes.Location, &l.Attributes.PropertyType,
		&l.Attributes.AreaSize, &l.Attributes.Price,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, &domain.StorageError{Op: "scanning listing", Err: err}
	}

	l.Status = domain.Status(status)
	l.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	l.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return l, nil
}

// loadAssets fills the asset references of the given listings in one query.
func loadAssets(ctx context.Context, q querier, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Listing, len(listings))
	placeholders := make([]string, 0, len(listings))
	args := make([]any, 0, len(listings))
	for _, l := range listings {
		l.Assets = domain.Assets{Images: []string{}, Documents: []string{}}
		byID[l.ID] = l
		placeholders = append(placeholders, "?")
		args = append(args, l.ID)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT listing_id, kind, ref FROM listing_assets
		 WHERE listing_id IN (`+strings.Join(placeholders, ", ")+`)
		 ORDER BY listing_id, kind, position`,
		args...,
	)
	if err != nil {
		return &domain.StorageError{Op: "loading listing assets", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var listingID, kind, ref string
		if err := rows.Scan(&listingID, &kind, &ref); err != nil {
			return &domain.StorageError{Op: "scanning listing asset", Err: err}
		}
		l := byID[listingID]
		switch kind {
		case assetImage:
			l.Assets.Images = append(l.Assets.Images, ref)
		case assetDocument:
			l.Assets.Documents = append(l.Assets.Documents, ref)
		}
	}
	if err := rows.Err(); err != nil {
		return &domain.StorageError{Op: "iterating listing assets", Err: err}
	}
	return nil
}
