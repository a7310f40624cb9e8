package storage

import (
	"context"
	"fmt"
	"strings"

	"mealbills/internal/core"
)

// maxDateYear is the last year a YYYY-MM-DD date can hold.
const maxDateYear = 9999

const billSelect = `SELECT b.id, b.consumer_id, c.name, b.meal_type, b.amount_cents, b.date, b.created_at, b.updated_at
	FROM bills b JOIN consumers c ON c.id = b.consumer_id`

func scanBill(row rowScanner) (core.Bill, error) {
	var (
		b                    core.Bill
		mealType, date       string
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &b.ConsumerID, &b.ConsumerName, &mealType, &b.Amount.Cents, &date, &createdAt, &updatedAt); err != nil {
		return core.Bill{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill %s has malformed date %q: %w", b.ID, date, err)
	}
	b.MealType = core.MealType(mealType)
	b.Date = d
	b.CreatedAt = parseTimestamp(createdAt)
	b.UpdatedAt = parseTimestamp(updatedAt)
	return b, nil
}

// billWhere renders f as a WHERE clause. The upper date bound is
// exclusive on the following day.
func billWhere(f core.BillFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ConsumerName != nil {
		conds = append(conds, "c.name = ?")
		args = append(args, *f.ConsumerName)
	}
	if f.MealType != nil {
		conds = append(conds, "b.meal_type = ?")
		args = append(args, string(*f.MealType))
	}
	if f.From != nil {
		conds = append(conds, "b.date >= ?")
		args = append(args, f.From.String())
	}
	// past 9999-12-31 the bound has no four-digit year and would sort
	// before every stored date; no date can exceed it, so drop the bound
	if f.Until != nil && f.Until.AddDays(1).Year() <= maxDateYear {
		conds = append(conds, "b.date < ?")
		args = append(args, f.Until.AddDays(1).String())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLiteStore) queryBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]core.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (s *SQLiteStore) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	ts := s.timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (id, consumer_id, meal_type, amount_cents, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ConsumerID, string(b.MealType), b.Amount.Cents, b.Date.String(), ts, ts)
	if isForeignKeyViolation(err) {
		return core.Bill{}, core.NotFoundf("Consumer not found")
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	return s.GetBill(ctx, b.ID)
}

func (s *SQLiteStore) GetBill(ctx context.Context, id string) (core.Bill, error) {
	b, err := scanBill(s.db.QueryRowContext(ctx, billSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return core.Bill{}, notFoundOr(fmt.Errorf("get bill %s: %w", id, err), "Bill")
	}
	return b, nil
}

func (s *SQLiteStore) UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET consumer_id = ?, meal_type = ?, amount_cents = ?, date = ?, updated_at = ? WHERE id = ?`,
		b.ConsumerID, string(b.MealType), b.Amount.Cents, b.Date.String(), s.timestamp(), b.ID)
	if isForeignKeyViolation(err) {
		return core.Bill{}, core.NotFoundf("Consumer not found")
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("update bill %s: %w", b.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Bill{}, core.NotFoundf("Bill not found")
	}
	return s.GetBill(ctx, b.ID)
}

func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("Bill not found")
	}
	return nil
}

func (s *SQLiteStore) ListBills(ctx context.Context, f core.BillFilter) ([]core.Bill, error) {
	where, args := billWhere(f)
	bills, err := s.queryBills(ctx, billSelect+where+` ORDER BY b.date DESC, b.created_at DESC, b.rowid DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (s *SQLiteStore) RecentBills(ctx context.Context, limit int) ([]core.Bill, error) {
	bills, err := s.queryBills(ctx, billSelect+` ORDER BY b.created_at DESC, b.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent bills: %w", err)
	}
	return bills, nil
}

func (s *SQLiteStore) TotalsByMealType(ctx context.Context, f core.BillFilter) ([]core.MealTypeTotal, error) {
	where, args := billWhere(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.meal_type, COUNT(*), COALESCE(SUM(b.amount_cents), 0)
		 FROM bills b JOIN consumers c ON c.id = b.consumer_id`+where+`
		 GROUP BY b.meal_type`, args...)
	if err != nil {
		return nil, fmt.Errorf("totals by meal type: %w", err)
	}
	defer rows.Close()

	totals := make([]core.MealTypeTotal, 0, len(core.MealTypes))
	for rows.Next() {
		var (
			t        core.MealTypeTotal
			mealType string
		)
		if err := rows.Scan(&mealType, &t.Count, &t.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan meal type total: %w", err)
		}
		t.MealType = core.MealType(mealType)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal type totals: %w", err)
	}
	core.SortMealTypeTotals(totals)
	return totals, nil
}
