package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adotai/adotai-backend/internal/model"
)

// ErrRequestNotFound is returned when an adoption request cannot be
// found in the DB.
var ErrRequestNotFound = errors.New("adoption request not found")

// AdoptionRequestRepo provides persistence for adoption requests.
// Approval is the one multi-step invariant in the system and always
// runs inside a single transaction: exactly one approved request per
// animal, siblings rejected and the animal marked adopted, or nothing.
type AdoptionRequestRepo struct {
	db *sql.DB
}

// NewAdoptionRequestRepo returns a new repo bound to the given database.
func NewAdoptionRequestRepo(db *sql.DB) *AdoptionRequestRepo {
	return &AdoptionRequestRepo{db: db}
}

// Create inserts a pending request. A second pending request by the
// same adopter for the same animal is rejected with ErrConflict, as is
// a request for an animal that is not available.
func (r *AdoptionRequestRepo) Create(ctx context.Context, req *model.AdoptionRequest) error {
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

	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM animals WHERE id=? LIMIT 1", req.AnimalID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAnimalNotFound
	}
	if err != nil {
		return err
	}
	if status != model.AnimalAvailable && status != model.AnimalPending {
		return ErrConflict
	}

	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM adoption_requests WHERE animal_id=? AND adopter_id=? AND status=? LIMIT 1",
		req.AnimalID, req.AdopterID, model.RequestPending).Scan(&existing)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO adoption_requests (animal_id, adopter_id, status, message, visit_at) VALUES (?,?,?,?,?)",
		req.AnimalID, req.AdopterID, model.RequestPending, req.Message, req.VisitAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	req.Status = model.RequestPending

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a single request row.
func (r *AdoptionRequestRepo) GetByID(ctx context.Context, id uint64) (model.AdoptionRequest, error) {
	var req model.AdoptionRequest
	err := r.db.QueryRowContext(ctx,
		`SELECT id, animal_id, adopter_id, status, message, visit_at, created_at, updated_at
		 FROM adoption_requests WHERE id=? LIMIT 1`, id).
		Scan(&req.ID, &req.AnimalID, &req.AdopterID, &req.Status, &req.Message,
			&req.VisitAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return req, ErrRequestNotFound
	}
	return req, err
}

// ApproveResult carries what the cascade changed, for event publishing.
type ApproveResult struct {
	RequestID uint64
	AnimalID  uint64
	AdopterID uint64
	Rejected  int64 // sibling pending requests flipped to rejected
}

// Approve runs the approval cascade in one transaction: the request
// becomes approved, every other pending request for the same animal
// becomes rejected, and the animal becomes adopted. advertiserID must
// own the animal unless force is set (admin override). A request that
// is not pending yields ErrConflict.
func (r *AdoptionRequestRepo) Approve(ctx context.Context, requestID, advertiserID uint64, force bool) (ApproveResult, error) {
	var out ApproveResult
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		animalID, adopterID, owner uint64
		status                     string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT r.animal_id, r.adopter_id, r.status, a.advertiser_id
		 FROM adoption_requests r JOIN animals a ON a.id = r.animal_id
		 WHERE r.id=? FOR UPDATE`, requestID).
		Scan(&animalID, &adopterID, &status, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrRequestNotFound
	}
	if err != nil {
		return out, err
	}
	if !force && owner != advertiserID {
		return out, ErrForbidden
	}
	if status != model.RequestPending {
		return out, ErrConflict
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE adoption_requests SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		model.RequestApproved, requestID); err != nil {
		return out, err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE adoption_requests SET status=?, updated_at=CURRENT_TIMESTAMP WHERE animal_id=? AND id<>? AND status=?",
		model.RequestRejected, animalID, requestID, model.RequestPending)
	if err != nil {
		return out, err
	}
	rejected, _ := res.RowsAffected()
	if _, err = tx.ExecContext(ctx,
		"UPDATE animals SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		model.AnimalAdopted, animalID); err != nil {
		return out, err
	}

	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true
	return ApproveResult{RequestID: requestID, AnimalID: animalID, AdopterID: adopterID, Rejected: rejected}, nil
}

// Reject flips one pending request to rejected. Same ownership rules
// as Approve, no cascade.
func (r *AdoptionRequestRepo) Reject(ctx context.Context, requestID, advertiserID uint64, force bool) error {
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

	var (
		owner  uint64
		status string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT a.advertiser_id, r.status
		 FROM adoption_requests r JOIN animals a ON a.id = r.animal_id
		 WHERE r.id=? FOR UPDATE`, requestID).Scan(&owner, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if !force && owner != advertiserID {
		return ErrForbidden
	}
	if status != model.RequestPending {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE adoption_requests SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		model.RequestRejected, requestID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const requestSummaryQuery = `SELECT r.id, r.animal_id, r.adopter_id, r.status, r.message, r.visit_at,
	r.created_at, r.updated_at, a.name AS animal_name, p.name AS adopter_name
	FROM adoption_requests r
	JOIN animals a ON a.id = r.animal_id
	JOIN profiles p ON p.id = r.adopter_id`

func (r *AdoptionRequestRepo) listSummaries(ctx context.Context, q string, args ...any) ([]model.RequestSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RequestSummary
	for rows.Next() {
		var s model.RequestSummary
		if err := rows.Scan(&s.ID, &s.AnimalID, &s.AdopterID, &s.Status, &s.Message,
			&s.VisitAt, &s.CreatedAt, &s.UpdatedAt, &s.AnimalName, &s.AdopterName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByAnimal returns all requests for one animal, newest first. The
// handler verifies animal ownership before calling.
func (r *AdoptionRequestRepo) ListByAnimal(ctx context.Context, animalID uint64) ([]model.RequestSummary, error) {
	return r.listSummaries(ctx, requestSummaryQuery+" WHERE r.animal_id=? ORDER BY r.created_at DESC", animalID)
}

// ListByAdopter returns the adopter's own requests, newest first.
func (r *AdoptionRequestRepo) ListByAdopter(ctx context.Context, adopterID uint64) ([]model.RequestSummary, error) {
	return r.listSummaries(ctx, requestSummaryQuery+" WHERE r.adopter_id=? ORDER BY r.created_at DESC", adopterID)
}

// ListForAdvertiser returns requests across all of the advertiser's
// animals, pending first then newest.
func (r *AdoptionRequestRepo) ListForAdvertiser(ctx context.Context, advertiserID uint64) ([]model.RequestSummary, error) {
	return r.listSummaries(ctx,
		requestSummaryQuery+` WHERE a.advertiser_id=?
		ORDER BY r.status='pending' DESC, r.created_at DESC`, advertiserID)
}
