package repository

import (
	"context"
	"errors"

	"chat_relay_service/internal/member/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrDuplicateEmail unique violation on users.email
var ErrDuplicateEmail = errors.New("duplicate email")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email)`,
}

// MemberRepository definition get Member info
type MemberRepository interface {
	Migrate(ctx context.Context) error
	CreateUser(ctx context.Context, member *domain.Member) error
	FindByEmail(ctx context.Context, email string) (*domain.Member, error)
	FindByID(ctx context.Context, id int64) (*domain.Member, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.db.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO users(name, email, hashed_password) VALUES ($1, $2, $3) RETURNING id",
		member.Name, member.Email, member.HashedPassword,
	).Scan(&member.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.findOne(ctx, "SELECT id, name, email, hashed_password FROM users WHERE email = $1", email)
}

func (r *memberRepository) FindByID(ctx context.Context, id int64) (*domain.Member, error) {
	return r.findOne(ctx, "SELECT id, name, email, hashed_password FROM users WHERE id = $1", id)
}

func (r *memberRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Member, error) {
	var member domain.Member
	err := r.db.QueryRow(ctx, query, arg).Scan(&member.ID, &member.Name, &member.Email, &member.HashedPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ExistingIDs returns the subset of ids that belong to registered users, ascending.
func (r *memberRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found := []int64{}
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := r.db.Query(ctx, "SELECT id FROM users WHERE id = ANY($1) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}
