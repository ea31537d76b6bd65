package models

import (
	"context"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserModel struct {
	DB *pgxpool.Pool
}

const userColumns = `id::text AS id, name, email, password_hash, age, role, is_active, created_at, updated_at`

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Age          *int      `db:"age"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) user() *models.User {
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Age:          r.Age,
		Role:         r.Role,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (m *UserModel) collectOne(rows pgx.Rows, err error) (*models.User, error) {
	if err != nil {
		return nil, postgres.MapError(err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return row.user(), nil
}

func (m *UserModel) Get(ctx context.Context, id string) (*models.User, error) {
	rows, err := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
	return m.collectOne(rows, err)
}

func (m *UserModel) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, err := m.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return m.collectOne(rows, err)
}

func (m *UserModel) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	rows, err := m.DB.Query(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, age, role, is_active)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Age,
		user.Role,
		user.IsActive,
	)
	return m.collectOne(rows, err)
}

// escapeLike makes search text match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const userSearchFilter = `($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')`

// List returns one page of users, newest first, along with the number of
// users matching search overall.
func (m *UserModel) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	pattern := escapeLike(search)
	rows, err := m.DB.Query(
		ctx,
		`SELECT count(*) OVER() AS total, `+userColumns+`
		FROM users
		WHERE `+userSearchFilter+`
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`,
		pattern,
		f.Limit(),
		f.Offset(),
	)
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	type row struct {
		Total int `db:"total"`
		userRow
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	users := make([]models.User, 0, len(outputRows))
	for _, r := range outputRows {
		users = append(users, *r.user())
	}
	if len(outputRows) > 0 {
		return users, outputRows[0].Total, nil
	}
	if f.Offset() == 0 {
		return users, 0, nil
	}
	// past the last page the window count is lost with the rows
	var total int
	err = m.DB.QueryRow(ctx, `SELECT count(*) FROM users WHERE `+userSearchFilter, pattern).Scan(&total)
	if err != nil {
		return nil, 0, postgres.MapError(err)
	}
	return users, total, nil
}

func (m *UserModel) Update(ctx context.Context, user *models.User) (*models.User, error) {
	rows, err := m.DB.Query(
		ctx,
		`UPDATE users SET name = $2, email = $3, age = $4, role = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING `+userColumns,
		user.ID,
		user.Name,
		user.Email,
		user.Age,
		user.Role,
		user.IsActive,
	)
	return m.collectOne(rows, err)
}

func (m *UserModel) Delete(ctx context.Context, id string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM users WHERE id = $1::uuid", id)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
