package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkazarin/molva/internal/domain/models"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Contact, error)
	Exists(ctx context.Context, userID, contactID uuid.UUID) (bool, error)
}

type contactRepo struct {
	db *sqlx.DB
}

func NewContactRepo(db *sqlx.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, contact *models.Contact) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO contacts (id, user_id, contact_id) VALUES ($1, $2, $3)",
		contact.ID,
		contact.UserID,
		contact.ContactID,
	)

	return err
}

func (r *contactRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Contact, error) {
	var contacts []*models.Contact

	query := "SELECT id, user_id, contact_id, created_at FROM contacts WHERE user_id = $1"

	if err := r.db.SelectContext(ctx, &contacts, query, userID); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *contactRepo) Exists(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	var exists bool

	query := "SELECT EXISTS (SELECT 1 FROM contacts WHERE user_id = $1 AND contact_id = $2)"

	if err := r.db.GetContext(ctx, &exists, query, userID, contactID); err != nil {
		return false, err
	}

	return exists, nil
}
