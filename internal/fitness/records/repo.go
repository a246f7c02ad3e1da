package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*Repo)(nil)

// Repo keeps records as JSONB documents in postgres.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, record Record) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	modality := record.Modality()
	span.SetAttributes(attribute.String("user_id", record.UserID))
	span.SetAttributes(attribute.String("modality", modality.String()))

	if err := record.Validate(); err != nil {
		return "", err
	}

	record.ID = uuid.NewString()
	doc, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO entry (id, user_id, collection, doc, ts) VALUES ($1, $2, $3, $4, $5);`,
		record.ID, record.UserID, modality.Collection(), doc, record.Timestamp,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return "", fmt.Errorf("%w: %s", ErrUnknownUser, record.UserID)
		}
		return "", fmt.Errorf("insert entry: %w", err)
	}

	span.SetAttributes(attribute.String("record.id", record.ID))
	return record.ID, nil
}

func (r *Repo) List(ctx context.Context, userID string, modality Modality) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))
	span.SetAttributes(attribute.String("modality", modality.String()))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, doc, ts
			FROM entry
			WHERE user_id = $1 AND collection = $2
			ORDER BY ts DESC, seq DESC;`,
		userID, modality.Collection(),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2records: %w", err)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(records)))
	return records, nil
}

func (r *Repo) Delete(ctx context.Context, userID string, modality Modality, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM entry WHERE id = $1 AND user_id = $2 AND collection = $3`,
		id, userID, modality.Collection(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repo) rows2records(rows pgx.Rows) ([]Record, error) {
	records := make([]Record, 0)
	for rows.Next() {
		var id string
		var doc []byte
		var ts time.Time
		if err := rows.Scan(&id, &doc, &ts); err != nil {
			return nil, err
		}

		var record Record
		if err := json.Unmarshal(doc, &record); err != nil {
			return nil, fmt.Errorf("unmarshal record %s: %w", id, err)
		}
		// columns are the source of truth for id and timestamp
		record.ID = id
		record.Timestamp = ts

		records = append(records, record)
	}

	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return records, nil
}
