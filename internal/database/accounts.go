package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hanapbahay/server/internal/models"
)

func (d *Database) CreateAccount(account *models.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := d.db.Exec(`
        INSERT INTO accounts
            (id, email, password_hash, full_name, contact_number, gender, role,
             is_approved, profile_image_url, id_image_url, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.ContactNumber,
		account.Gender,
		account.Role,
		account.IsApproved,
		account.ProfileImageURL,
		account.IDImageURL,
		account.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (d *Database) GetAccountByID(id string) (*models.Account, error) {
	return d.getAccount("id = ?", id)
}

func (d *Database) GetAccountByEmail(email string) (*models.Account, error) {
	return d.getAccount("LOWER(email) = LOWER(?)", email)
}

func (d *Database) getAccount(where string, arg interface{}) (*models.Account, error) {
	query := `
        SELECT id, email, password_hash, full_name, contact_number, gender,
               role, is_approved, profile_image_url, id_image_url, created_at
        FROM accounts
        WHERE ` + where

	var a models.Account
	var contactNumber, gender sql.NullString
	var profileImageURL, idImageURL sql.NullString

	err := d.db.QueryRow(query, arg).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.FullName,
		&contactNumber,
		&gender,
		&a.Role,
		&a.IsApproved,
		&profileImageURL,
		&idImageURL,
		&a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	if contactNumber.Valid {
		a.ContactNumber = contactNumber.String
	}
	if gender.Valid {
		a.Gender = gender.String
	}
	if profileImageURL.Valid {
		a.ProfileImageURL = &profileImageURL.String
	}
	if idImageURL.Valid {
		a.IDImageURL = &idImageURL.String
	}

	return &a, nil
}

// ApproveAccount flips the approval gate for an account. Repeating the call
// is a no-op, so approving twice stays idempotent.
func (d *Database) ApproveAccount(id string) error {
	result, err := d.db.Exec(`UPDATE accounts SET is_approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to approve account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPendingLandlords returns landlord accounts awaiting admin approval,
// oldest registration first so the review queue is fair.
func (d *Database) GetPendingLandlords() ([]models.Account, error) {
	rows, err := d.db.Query(`
        SELECT id, email, password_hash, full_name, contact_number, gender,
               role, is_approved, profile_image_url, id_image_url, created_at
        FROM accounts
        WHERE role = ? AND is_approved = 0
        ORDER BY created_at ASC
    `, models.RoleLandlord)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending landlords: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		var contactNumber, gender sql.NullString
		var profileImageURL, idImageURL sql.NullString

		err := rows.Scan(
			&a.ID,
			&a.Email,
			&a.PasswordHash,
			&a.FullName,
			&contactNumber,
			&gender,
			&a.Role,
			&a.IsApproved,
			&profileImageURL,
			&idImageURL,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		if contactNumber.Valid {
			a.ContactNumber = contactNumber.String
		}
		if gender.Valid {
			a.Gender = gender.String
		}
		if profileImageURL.Valid {
			a.ProfileImageURL = &profileImageURL.String
		}
		if idImageURL.Valid {
			a.IDImageURL = &idImageURL.String
		}

		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}
