package portfolio

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Fields that may be used to group or filter aggregates.
const (
	FieldInvestmentType = "investment_type"
	FieldPlatform       = "platform"
	FieldCurrency       = "currency"
	FieldAutoUpdate     = "auto_update"
)

var aggregateFields = []string{FieldInvestmentType, FieldPlatform, FieldCurrency, FieldAutoUpdate}

// AggregateQuery selects the grouping and the equality filters of an aggregate.
// Currency is always part of the grouping so amounts in different currencies
// are never summed together.
type AggregateQuery struct {
	GroupBy []string
	Filters map[string]string
}

// AggregateRow holds the sums of one group. Currency is empty for positions
// without a currency.
type AggregateRow struct {
	Keys          map[string]string
	Currency      string
	TotalInvested float64
	TotalCurrent  float64
	TotalPL       float64
	Count         int
}

// Aggregate returns grouped sums of invested, current and profit/loss amounts
func (r *PositionRepository) Aggregate(ctx context.Context, q AggregateQuery) ([]AggregateRow, error) {
	groupBy := make([]string, 0, len(q.GroupBy)+1)
	for _, field := range q.GroupBy {
		if !slices.Contains(aggregateFields, field) {
			return nil, fmt.Errorf("unsupported group field %q", field)
		}
		if field != FieldCurrency && !slices.Contains(groupBy, field) {
			groupBy = append(groupBy, field)
		}
	}

	var where []string
	var args []any
	filterKeys := make([]string, 0, len(q.Filters))
	for field := range q.Filters {
		filterKeys = append(filterKeys, field)
	}
	slices.Sort(filterKeys)
	for _, field := range filterKeys {
		if !slices.Contains(aggregateFields, field) {
			return nil, fmt.Errorf("unsupported filter field %q", field)
		}
		where = append(where, field+" = ?")
		args = append(args, q.Filters[field])
	}

	selectCols := make([]string, 0, len(groupBy)+1)
	for _, field := range groupBy {
		selectCols = append(selectCols, "COALESCE("+field+", '')")
	}
	selectCols = append(selectCols, "COALESCE(currency, '')")

	query := `SELECT ` + strings.Join(selectCols, ", ") + `,
		COALESCE(SUM(invested_amount), 0),
		COALESCE(SUM(current_amount), 0),
		COALESCE(SUM(profit_loss), 0),
		COUNT(*)
		FROM investments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	groupCols := append(append([]string(nil), groupBy...), "currency")
	query += " GROUP BY " + strings.Join(groupCols, ", ") + " ORDER BY " + strings.Join(groupCols, ", ")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregate: %w", err)
	}
	defer rows.Close()

	var result []AggregateRow
	for rows.Next() {
		keyValues := make([]string, len(groupBy))
		row := AggregateRow{Keys: make(map[string]string, len(groupBy)+1)}

		dest := make([]any, 0, len(groupBy)+5)
		for i := range keyValues {
			dest = append(dest, &keyValues[i])
		}
		dest = append(dest, &row.Currency, &row.TotalInvested, &row.TotalCurrent, &row.TotalPL, &row.Count)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}

		for i, field := range groupBy {
			row.Keys[field] = keyValues[i]
		}
		row.Keys[FieldCurrency] = row.Currency
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate rows: %w", err)
	}
	return result, nil
}
