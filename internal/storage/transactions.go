package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karanvs/fintrail/internal/common"
	"github.com/karanvs/fintrail/internal/model"
	"github.com/karanvs/fintrail/internal/service"
)

// SaveTransaction persists a single assembled transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	hash := txn.GenerateHash()

	tagsJSON := ""
	if len(txn.AnomalyTags) > 0 {
		tagsBytes, marshalErr := json.Marshal(txn.AnomalyTags)
		if marshalErr == nil {
			tagsJSON = string(tagsBytes)
		}
	}

	now := time.Now().UTC()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, hash, user_id, occurred_at, direction, time_of_day,
			category_id, subcategory, merchant, bank_name, account_tail,
			source_text, amount, confidence, model_insight, anomaly_tags,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		hash,
		txn.UserID,
		txn.OccurredAt,
		string(txn.Direction),
		txn.TimeOfDay,
		txn.CategoryID,
		txn.Subcategory,
		txn.Merchant,
		txn.BankName,
		txn.AccountTail,
		txn.SourceText,
		txn.Amount.String(),
		txn.Confidence,
		txn.ModelInsight,
		tagsJSON,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: transaction %s", common.ErrDuplicateEntry, txn.ID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}

	return nil
}

const transactionColumns = `
	id, user_id, occurred_at, direction, time_of_day,
	category_id, subcategory, merchant, bank_name, account_tail,
	source_text, amount, confidence, model_insight, anomaly_tags,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var direction, amountStr string
	var timeOfDay, subcategory, merchant, bankName, accountTail sql.NullString
	var sourceText, modelInsight, tagsJSON sql.NullString

	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.OccurredAt,
		&direction,
		&timeOfDay,
		&txn.CategoryID,
		&subcategory,
		&merchant,
		&bankName,
		&accountTail,
		&sourceText,
		&amountStr,
		&txn.Confidence,
		&modelInsight,
		&tagsJSON,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Direction = model.Direction(direction)
	txn.TimeOfDay = timeOfDay.String
	txn.Subcategory = subcategory.String
	txn.Merchant = merchant.String
	txn.BankName = bankName.String
	txn.AccountTail = accountTail.String
	txn.SourceText = sourceText.String
	txn.ModelInsight = modelInsight.String

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amountStr, err)
	}
	txn.Amount = amount

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &txn.AnomalyTags); err != nil {
			// Log but don't fail on JSON parse error
			slog.Warn("Failed to parse anomaly tags JSON", "error", err, "json", tagsJSON.String)
		}
	}

	return &txn, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetTransactions retrieves transactions matching the filter, most recent
// first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}

	if filter.StartDate != nil {
		query += " AND occurred_at >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND occurred_at < ?"
		args = append(args, *filter.EndDate)
	}
	if filter.CategoryID != "" {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.Direction != "" {
		query += " AND direction = ?"
		args = append(args, string(filter.Direction))
	}

	query += " ORDER BY occurred_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return s.queryTransactions(ctx, query, args...)
}

// FindDuplicate looks for an existing record that the candidate could be a
// re-delivery of: identical amount, same bank, occurred within the window,
// matched on account fragment when both carry one, else on merchant text.
func (s *SQLiteStorage) FindDuplicate(ctx context.Context, candidate *model.Transaction, window time.Duration) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: candidate", ErrNilParameter)
	}

	rows, err := s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE amount = ? AND bank_name = ? AND occurred_at BETWEEN ? AND ?
		ORDER BY occurred_at ASC
	`,
		candidate.Amount.String(),
		candidate.BankName,
		candidate.OccurredAt.Add(-window),
		candidate.OccurredAt.Add(window),
	)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		existing := &rows[i]
		if existing.ID == candidate.ID {
			continue
		}
		if existing.AccountTail != "" && candidate.AccountTail != "" {
			if existing.AccountTail == candidate.AccountTail {
				return existing, nil
			}
			continue
		}
		if strings.EqualFold(existing.Merchant, candidate.Merchant) {
			return existing, nil
		}
	}

	return nil, nil
}

// UpdateEnrichment applies a re-analysis patch to a stored transaction.
// Nil pointer fields leave the stored value untouched.
func (s *SQLiteStorage) UpdateEnrichment(ctx context.Context, id string, patch service.EnrichmentPatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if patch.Confidence != nil {
		if *patch.Confidence < 0 || *patch.Confidence > 1 {
			return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidTransaction)
		}
		sets = append(sets, "confidence = ?")
		args = append(args, *patch.Confidence)
	}
	if patch.ModelInsight != nil {
		sets = append(sets, "model_insight = ?")
		args = append(args, *patch.ModelInsight)
	}
	if patch.AnomalyTags != nil {
		tagsBytes, marshalErr := json.Marshal(patch.AnomalyTags)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal anomaly tags: %w", marshalErr)
		}
		sets = append(sets, "anomaly_tags = ?")
		args = append(args, string(tagsBytes))
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}

	return nil
}

// CountTransactions returns the total number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Clear deletes all stored transactions and returns how many were removed.
func (s *SQLiteStorage) Clear(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check clear result: %w", err)
	}
	return affected, nil
}

// GetExpensesByPeriod retrieves expense transactions in [start, end),
// oldest first.
func (s *SQLiteStorage) GetExpensesByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	return s.getByDirectionAndPeriod(ctx, model.DirectionExpense, start, end)
}

// GetIncomeByPeriod retrieves income transactions in [start, end),
// oldest first.
func (s *SQLiteStorage) GetIncomeByPeriod(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	return s.getByDirectionAndPeriod(ctx, model.DirectionIncome, start, end)
}

func (s *SQLiteStorage) getByDirectionAndPeriod(ctx context.Context, direction model.Direction, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE direction = ? AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at ASC
	`, string(direction), start, end)
}

// GetCategorySummary returns total expense amounts per category display
// name for the period.
func (s *SQLiteStorage) GetCategorySummary(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, t.category_id), SUM(CAST(t.amount AS REAL))
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.direction = 'expense' AND t.occurred_at >= ? AND t.occurred_at < ?
		GROUP BY t.category_id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSummary(rows)
}

// GetMerchantSummary returns total expense amounts per merchant for the
// period. Transactions with no resolved merchant are excluded.
func (s *SQLiteStorage) GetMerchantSummary(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant, SUM(CAST(amount AS REAL))
		FROM transactions
		WHERE direction = 'expense' AND merchant != '' AND occurred_at >= ? AND occurred_at < ?
		GROUP BY merchant
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSummary(rows)
}

func scanSummary(rows *sql.Rows) (map[string]float64, error) {
	summary := make(map[string]float64)
	for rows.Next() {
		var key string
		var total float64
		if err := rows.Scan(&key, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[key] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary iteration failed: %w", err)
	}
	return summary, nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transaction iteration failed: %w", err)
	}

	return transactions, nil
}
