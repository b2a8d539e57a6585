package repository

import (
	"context"
	"strings"

	"github.com/adotai/adotai-backend/internal/model"
)

// AnimalSearchQuery defines filters & pagination for browsing animals.
type AnimalSearchQuery struct {
	Species  string
	Size     string
	Gender   string
	City     string
	Status   string
	Text     string // matches name, breed and description
	Page     int
	PageSize int
}

// Search runs the filtered browse query and returns one page of
// denormalized listings plus the total match count. Filters compose
// with AND; text search is a case-insensitive LIKE over name, breed
// and description. Removed listings are excluded unless a status is
// requested explicitly.
func (r *AnimalRepo) Search(ctx context.Context, q AnimalSearchQuery) ([]model.AnimalListing, int64, error) {
	out, total, err := r.search(ctx, q, r.useView)
	if err != nil && r.useView && isMissingTable(err) {
		r.useView = false
		return r.search(ctx, q, false)
	}
	return out, total, err
}

func (r *AnimalRepo) search(ctx context.Context, q AnimalSearchQuery, useView bool) ([]model.AnimalListing, int64, error) {
	col := func(name string) string {
		if useView {
			return name
		}
		return "a." + name
	}

	where := []string{}
	args := []any{}

	if q.Status != "" {
		where = append(where, col("status")+" = ?")
		args = append(args, strings.ToLower(q.Status))
	} else {
		where = append(where, col("status")+" <> ?")
		args = append(args, model.AnimalRemoved)
	}
	if q.Species != "" {
		where = append(where, "LOWER("+col("species")+") = ?")
		args = append(args, strings.ToLower(q.Species))
	}
	if q.Size != "" {
		where = append(where, "LOWER("+col("size")+") = ?")
		args = append(args, strings.ToLower(q.Size))
	}
	if q.Gender != "" {
		where = append(where, "LOWER("+col("gender")+") = ?")
		args = append(args, strings.ToLower(q.Gender))
	}
	if q.City != "" {
		where = append(where, "LOWER("+col("city")+") LIKE ?")
		args = append(args, "%"+strings.ToLower(q.City)+"%")
	}
	if q.Text != "" {
		like := "%" + strings.ToLower(q.Text) + "%"
		where = append(where,
			"(LOWER("+col("name")+") LIKE ? OR LOWER("+col("breed")+") LIKE ? OR LOWER("+col("description")+") LIKE ?)")
		args = append(args, like, like, like)
	}

	cond := strings.Join(where, " AND ")

	countFrom := "animal_listings"
	if !useView {
		countFrom = "animals a JOIN profiles p ON p.id = a.advertiser_id"
	}
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+countFrom+" WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	order := " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	if !useView {
		order = " ORDER BY a.created_at DESC LIMIT ? OFFSET ?"
	}
	dataSQL := r.listingQuery(useView) + " WHERE " + cond + order
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.AnimalListing, 0, limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
