package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mealbills/internal/core"
)

const consumerColumns = `c.id, c.name, c.email, c.phone, c.is_active, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM bills b WHERE b.consumer_id = c.id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsumer(row rowScanner) (core.Consumer, error) {
	var (
		c                    core.Consumer
		email, phone         sql.NullString
		active               int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &email, &phone, &active, &createdAt, &updatedAt, &c.BillCount); err != nil {
		return core.Consumer{}, err
	}
	c.Email = fromNullable(email)
	c.Phone = fromNullable(phone)
	c.IsActive = active != 0
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteStore) CreateConsumer(ctx context.Context, c core.Consumer) (core.Consumer, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	ts := s.timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO consumers (id, name, email, phone, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullable(c.Email), nullable(c.Phone), boolToInt(c.IsActive), ts, ts)
	if isUniqueViolation(err) {
		return core.Consumer{}, core.Conflictf("Consumer with this name already exists")
	}
	if err != nil {
		return core.Consumer{}, fmt.Errorf("create consumer: %w", err)
	}
	return s.GetConsumer(ctx, c.ID)
}

func (s *SQLiteStore) GetConsumer(ctx context.Context, id string) (core.Consumer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+consumerColumns+` FROM consumers c WHERE c.id = ?`, id)
	c, err := scanConsumer(row)
	if err != nil {
		return core.Consumer{}, notFoundOr(fmt.Errorf("get consumer %s: %w", id, err), "Consumer")
	}
	return c, nil
}

func (s *SQLiteStore) GetConsumerByName(ctx context.Context, name string) (core.Consumer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+consumerColumns+` FROM consumers c WHERE c.name = ?`, name)
	c, err := scanConsumer(row)
	if err != nil {
		return core.Consumer{}, notFoundOr(fmt.Errorf("get consumer by name: %w", err), "Consumer")
	}
	return c, nil
}

func (s *SQLiteStore) ListConsumers(ctx context.Context, f core.ConsumerFilter) ([]core.Consumer, error) {
	var (
		where []string
		args  []any
	)
	if f.IsActive != nil {
		where = append(where, "c.is_active = ?")
		args = append(args, boolToInt(*f.IsActive))
	}
	query := `SELECT ` + consumerColumns + ` FROM consumers c`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list consumers: %w", err)
	}
	defer rows.Close()

	consumers := make([]core.Consumer, 0)
	for rows.Next() {
		c, err := scanConsumer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consumer: %w", err)
		}
		consumers = append(consumers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consumers: %w", err)
	}
	return consumers, nil
}

func (s *SQLiteStore) UpdateConsumer(ctx context.Context, c core.Consumer) (core.Consumer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE consumers SET name = ?, email = ?, phone = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		c.Name, nullable(c.Email), nullable(c.Phone), boolToInt(c.IsActive), s.timestamp(), c.ID)
	if isUniqueViolation(err) {
		return core.Consumer{}, core.Conflictf("Consumer with this name already exists")
	}
	if err != nil {
		return core.Consumer{}, fmt.Errorf("update consumer %s: %w", c.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Consumer{}, core.NotFoundf("Consumer not found")
	}
	return s.GetConsumer(ctx, c.ID)
}

func (s *SQLiteStore) DeleteConsumer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM consumers WHERE id = ?`, id)
	if isForeignKeyViolation(err) {
		return core.Conflictf("Cannot delete consumer with existing bills. Please deactivate instead.")
	}
	if err != nil {
		return fmt.Errorf("delete consumer %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("Consumer not found")
	}
	return nil
}

func (s *SQLiteStore) CountBillsByConsumer(ctx context.Context, consumerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills WHERE consumer_id = ?`, consumerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bills for consumer %s: %w", consumerID, err)
	}
	return n, nil
}
