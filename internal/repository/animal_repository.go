package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/adotai/adotai-backend/internal/model"
)

// ErrAnimalNotFound is returned when an animal cannot be found in the DB.
var ErrAnimalNotFound = errors.New("animal not found")

// AnimalRepo encapsulates all database queries related to animal
// listings. Reads prefer the denormalized `animal_listings` view; when
// the deployment lacks it (MySQL 1146), an explicit join producing the
// same shape is used instead. The capability is probed once at
// startup and cached for the process lifetime rather than being
// re-detected from the error code on every call.
type AnimalRepo struct {
	db      *sql.DB
	useView bool
}

// NewAnimalRepo constructs an AnimalRepo with the provided DB handle.
func NewAnimalRepo(db *sql.DB) *AnimalRepo { return &AnimalRepo{db: db} }

// ProbeListingView checks whether the animal_listings view exists and
// caches the answer. Call it once during startup; it never fails the
// boot, a missing view just routes reads through the join path.
func (r *AnimalRepo) ProbeListingView(ctx context.Context) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM animal_listings LIMIT 1").Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		if isMissingTable(err) {
			log.Printf("animal repo: animal_listings view absent, using join fallback")
			r.useView = false
			return
		}
		log.Printf("animal repo: view probe failed: %v; using join fallback", err)
		r.useView = false
		return
	}
	r.useView = true
}

// listingQuery returns the SELECT producing the denormalized listing
// shape, either from the view or from the equivalent join. Both
// variants expose identical column names and order.
func (r *AnimalRepo) listingQuery(useView bool) string {
	if useView {
		return `SELECT id, advertiser_id, name, species, breed, age_months, size, gender,
			description, city, status, created_at, updated_at,
			advertiser_name, advertiser_city, photo_urls
			FROM animal_listings`
	}
	return `SELECT a.id, a.advertiser_id, a.name, a.species, a.breed, a.age_months, a.size, a.gender,
		a.description, a.city, a.status, a.created_at, a.updated_at,
		p.name AS advertiser_name, p.city AS advertiser_city,
		COALESCE((SELECT GROUP_CONCAT(ph.url ORDER BY ph.id SEPARATOR '|')
			FROM animal_photos ph WHERE ph.animal_id = a.id), '') AS photo_urls
		FROM animals a
		JOIN profiles p ON p.id = a.advertiser_id`
}

func scanListing(rows interface {
	Scan(dest ...any) error
}) (model.AnimalListing, error) {
	var l model.AnimalListing
	var photos string
	err := rows.Scan(&l.ID, &l.AdvertiserID, &l.Name, &l.Species, &l.Breed, &l.AgeMonths,
		&l.Size, &l.Gender, &l.Description, &l.City, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		&l.AdvertiserName, &l.AdvertiserCity, &photos)
	if err != nil {
		return l, err
	}
	if photos != "" {
		l.PhotoURLs = strings.Split(photos, "|")
	}
	return l, nil
}

// GetListing fetches one denormalized listing by id. If the cached
// capability turns out stale (view dropped after the probe), the call
// retries once through the join path.
func (r *AnimalRepo) GetListing(ctx context.Context, id uint64) (model.AnimalListing, error) {
	l, err := r.getListing(ctx, id, r.useView)
	if err != nil && r.useView && isMissingTable(err) {
		r.useView = false
		return r.getListing(ctx, id, false)
	}
	return l, err
}

func (r *AnimalRepo) getListing(ctx context.Context, id uint64, useView bool) (model.AnimalListing, error) {
	q := r.listingQuery(useView)
	if useView {
		q += " WHERE id = ? LIMIT 1"
	} else {
		q += " WHERE a.id = ? LIMIT 1"
	}
	l, err := scanListing(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrAnimalNotFound
	}
	return l, err
}

// Create inserts a new animal with its photos in one transaction. At
// least one photo URL is required; the handler validates that before
// calling. The generated id is populated on the model.
func (r *AnimalRepo) Create(ctx context.Context, a *model.Animal, photoURLs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO animals (advertiser_id, name, species, breed, age_months, size, gender, description, city, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.AdvertiserID, a.Name, a.Species, a.Breed, a.AgeMonths, a.Size, a.Gender,
		a.Description, a.City, model.AnimalAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.Status = model.AnimalAvailable
	for _, url := range photoURLs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO animal_photos (animal_id, url) VALUES (?,?)", a.ID, url); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches the bare animal row (no joins). Ownership checks and
// status transitions use it.
func (r *AnimalRepo) GetByID(ctx context.Context, id uint64) (model.Animal, error) {
	var a model.Animal
	err := r.db.QueryRowContext(ctx,
		`SELECT id, advertiser_id, name, species, breed, age_months, size, gender, description, city, status, created_at, updated_at
		 FROM animals WHERE id=? LIMIT 1`, id).
		Scan(&a.ID, &a.AdvertiserID, &a.Name, &a.Species, &a.Breed, &a.AgeMonths, &a.Size,
			&a.Gender, &a.Description, &a.City, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrAnimalNotFound
	}
	return a, err
}

// Update edits the descriptive fields of a listing owned by the given
// advertiser. sql.ErrNoRows means not found or not owned.
func (r *AnimalRepo) Update(ctx context.Context, id, advertiserID uint64, a model.Animal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE animals SET name=?, species=?, breed=?, age_months=?, size=?, gender=?, description=?, city=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND advertiser_id=?`,
		a.Name, a.Species, a.Breed, a.AgeMonths, a.Size, a.Gender, a.Description, a.City,
		id, advertiserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus sets the listing status regardless of owner. Callers
// enforce authorization first; admins use it for removals.
func (r *AnimalRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE animals SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByAdvertiser returns the advertiser's own listings, newest first.
func (r *AnimalRepo) ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.AnimalListing, error) {
	q := r.listingQuery(r.useView)
	if r.useView {
		q += " WHERE advertiser_id = ? ORDER BY created_at DESC"
	} else {
		q += " WHERE a.advertiser_id = ? ORDER BY a.created_at DESC"
	}
	rows, err := r.db.QueryContext(ctx, q, advertiserID)
	if err != nil {
		if r.useView && isMissingTable(err) {
			r.useView = false
			return r.ListByAdvertiser(ctx, advertiserID)
		}
		return nil, err
	}
	defer rows.Close()
	var out []model.AnimalListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AddPhoto appends an uploaded photo URL to an existing listing owned
// by the advertiser.
func (r *AnimalRepo) AddPhoto(ctx context.Context, animalID, advertiserID uint64, url string) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT advertiser_id FROM animals WHERE id=? LIMIT 1", animalID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAnimalNotFound
	}
	if err != nil {
		return err
	}
	if owner != advertiserID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO animal_photos (animal_id, url) VALUES (?,?)", animalID, url)
	return err
}
