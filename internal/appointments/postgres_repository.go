package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores one row per record in the appointments table.
type PostgresRepository struct {
	db  pgQuerier
	now func() time.Time
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a repository backed by a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return newPostgresRepositoryWithQuerier(pool)
}

func newPostgresRepositoryWithQuerier(db pgQuerier) *PostgresRepository {
	if db == nil {
		panic("appointments: querier required")
	}
	return &PostgresRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Append inserts the record. Missing fields are stored as NULL.
func (r *PostgresRepository) Append(ctx context.Context, record extract.Fields) error {
	ctx, span := tracer.Start(ctx, "appointments.postgres.append")
	defer span.End()

	query := `
		INSERT INTO appointments (id, name, phone, service, date, time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		uuid.New(),
		nullable(record.Name),
		nullable(record.Phone),
		nullable(record.Service),
		nullable(record.Date),
		nullable(record.Time),
		r.now(),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: postgres insert: %w", err)
	}
	return nil
}

// List returns every row ordered by capture time.
func (r *PostgresRepository) List(ctx context.Context) ([]extract.Fields, error) {
	ctx, span := tracer.Start(ctx, "appointments.postgres.list")
	defer span.End()

	query := `
		SELECT name, phone, service, date, time
		FROM appointments
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: postgres list: %w", err)
	}
	defer rows.Close()

	out := []extract.Fields{}
	for rows.Next() {
		var name, phone, service, date, tm *string
		if err := rows.Scan(&name, &phone, &service, &date, &tm); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("appointments: postgres scan: %w", err)
		}
		out = append(out, extract.Fields{
			Name:    deref(name),
			Phone:   deref(phone),
			Service: deref(service),
			Date:    deref(date),
			Time:    deref(tm),
		})
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: postgres rows: %w", err)
	}
	return out, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
