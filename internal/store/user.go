package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jobportal/apiserver/types"
	"github.com/lib/pq"
)

// UserRepository handles persistence for user accounts.
//
// The role-specific variant of a user maps to nullable columns on the
// users table; scans rebuild the variant matching the stored role.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, first_name, last_name, email, password_hash, role, profile_picture,
	gender, skills, resume_key, company_name, industry, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT` + userColumns + `
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT` + userColumns + `
		FROM users
		WHERE lower(email) = lower($1)`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts a new account. A unique-constraint violation on the
// email index is reported as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	var gender, resumeKey, companyName, industry sql.NullString
	var skills any
	if user.Student != nil {
		gender = sql.NullString{String: user.Student.Gender, Valid: true}
		skills = pq.Array(user.Student.Skills)
		if user.Student.ResumeKey != "" {
			resumeKey = sql.NullString{String: user.Student.ResumeKey, Valid: true}
		}
	}
	if user.Company != nil {
		companyName = sql.NullString{String: user.Company.CompanyName, Valid: true}
		industry = sql.NullString{String: user.Company.Industry, Valid: true}
	}

	const query = `
		INSERT INTO users (
			first_name, last_name, email, password_hash, role, profile_picture,
			gender, skills, resume_key, company_name, industry, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.ProfilePicture,
		gender,
		skills,
		resumeKey,
		companyName,
		industry,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return user, nil
}

// SetProfilePicture records the object key or URL of an account's
// display image.
func (r *UserRepository) SetProfilePicture(ctx context.Context, id int, picture string) error {
	const query = `
		UPDATE users
		SET profile_picture = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, picture, time.Now(), id)
}

// SetResumeKey records the object key of a student's uploaded resume.
func (r *UserRepository) SetResumeKey(ctx context.Context, id int, key string) error {
	const query = `
		UPDATE users
		SET resume_key = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, key, time.Now(), id)
}

func (r *UserRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	var gender, resumeKey, companyName, industry sql.NullString
	var skills pq.StringArray
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.ProfilePicture,
		&gender,
		&skills,
		&resumeKey,
		&companyName,
		&industry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	switch user.Role {
	case types.RoleStudent:
		user.Student = &types.StudentProfile{
			Gender:    gender.String,
			Skills:    skills,
			ResumeKey: resumeKey.String,
		}
	case types.RoleCompany:
		user.Company = &types.CompanyProfile{
			CompanyName: companyName.String,
			Industry:    industry.String,
		}
	}
	return user, nil
}
