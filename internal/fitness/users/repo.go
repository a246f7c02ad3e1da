package users

import (
	"context"
	"fmt"

	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var _ Lister = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", user.ID))

	if err := user.Validate(); err != nil {
		return err
	}

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO app_user (id, name) VALUES ($1, $2);`,
		user.ID, user.Name,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("%w: %s", ErrUserExists, user.ID)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *Repo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM app_user ORDER BY name, id;`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2users: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(users)))
	return users, nil
}

func (r *Repo) rows2users(rows pgx.Rows) ([]User, error) {
	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
