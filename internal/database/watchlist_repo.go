package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/atlaspharma/atlas-api/internal/models"
)

var (
	ErrWatchlistNotFound = errors.New("watchlist not found")
)

// ListWatchlists returns all saved searches for a user
func (db *DB) ListWatchlists(ctx context.Context, userID int) ([]*models.Watchlist, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, description, criteria, alert_enabled, created_at, updated_at
		FROM watchlists
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.Watchlist
	for rows.Next() {
		w := &models.Watchlist{}
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Description,
			&w.Criteria, &w.AlertEnabled, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, w)
	}

	return lists, nil
}

// GetWatchlistByID retrieves a single watchlist
func (db *DB) GetWatchlistByID(ctx context.Context, id int) (*models.Watchlist, error) {
	w := &models.Watchlist{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, description, criteria, alert_enabled, created_at, updated_at
		FROM watchlists
		WHERE id = $1
	`, id).Scan(&w.ID, &w.UserID, &w.Name, &w.Description,
		&w.Criteria, &w.AlertEnabled, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWatchlistNotFound
		}
		return nil, err
	}

	return w, nil
}

// CreateWatchlist saves a new search. The criteria struct is stored as JSONB
// with the exact JSON shape of the live filter, so the saved form and the
// filter UI can never drift apart.
func (db *DB) CreateWatchlist(ctx context.Context, userID int, req *models.CreateWatchlistRequest) (*models.Watchlist, error) {
	w := &models.Watchlist{}

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO watchlists (user_id, name, description, criteria, alert_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, user_id, name, description, criteria, alert_enabled, created_at, updated_at
	`, userID, req.Name, req.Description, req.Criteria, req.AlertEnabled).Scan(
		&w.ID, &w.UserID, &w.Name, &w.Description,
		&w.Criteria, &w.AlertEnabled, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// UpdateWatchlist updates a saved search
func (db *DB) UpdateWatchlist(ctx context.Context, id int, req *models.UpdateWatchlistRequest) (*models.Watchlist, error) {
	w := &models.Watchlist{}

	err := db.Pool.QueryRow(ctx, `
		UPDATE watchlists
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    criteria = COALESCE($4, criteria),
		    alert_enabled = COALESCE($5, alert_enabled),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, name, description, criteria, alert_enabled, created_at, updated_at
	`, id, req.Name, req.Description, req.Criteria, req.AlertEnabled).Scan(
		&w.ID, &w.UserID, &w.Name, &w.Description,
		&w.Criteria, &w.AlertEnabled, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWatchlistNotFound
		}
		return nil, err
	}

	return w, nil
}

// DeleteWatchlist removes a saved search
func (db *DB) DeleteWatchlist(ctx context.Context, id int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM watchlists WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrWatchlistNotFound
	}

	return nil
}

// ListAlertWatchlists returns every alert-enabled watchlist with its owner's
// email, for evaluating new listings against saved searches.
func (db *DB) ListAlertWatchlists(ctx context.Context) ([]*models.AlertWatchlist, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT w.id, w.user_id, w.name, w.description, w.criteria, w.alert_enabled,
		       w.created_at, w.updated_at, u.email
		FROM watchlists w
		JOIN users u ON u.id = w.user_id
		WHERE w.alert_enabled = true
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.AlertWatchlist
	for rows.Next() {
		w := &models.AlertWatchlist{}
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Description,
			&w.Criteria, &w.AlertEnabled, &w.CreatedAt, &w.UpdatedAt, &w.OwnerEmail); err != nil {
			return nil, err
		}
		lists = append(lists, w)
	}

	return lists, nil
}
