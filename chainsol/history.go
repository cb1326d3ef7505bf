package chainsol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("database not configured")

// RecordHistory stores a newly built transaction. No-op without a database.
func (p *SolChain) RecordHistory(ctx context.Context, history *TransactionHistory) error {
	if p.db == nil {
		return nil
	}
	if history.Status == "" {
		history.Status = StatusCreated
	}
	if err := p.db.WithContext(ctx).Create(history).Error; err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", history.TransactionID, err)
	}
	return nil
}

// UpdateHistoryStatus moves a recorded transaction to a new status
func (p *SolChain) UpdateHistoryStatus(ctx context.Context, transactionID, signature, status, errMsg string) error {
	if p.db == nil {
		return nil
	}
	res := historyUpdate(p.db.WithContext(ctx), transactionID, signature, status, errMsg, time.Now())
	if res.Error != nil {
		return fmt.Errorf("failed to update transaction %s: %w", transactionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetTransactionHistory - Get transaction history from database
func (p *SolChain) GetTransactionHistory(ctx context.Context, address string, limit int) ([]TransactionHistory, error) {
	if p.db == nil {
		return nil, ErrNoDatabase
	}
	var histories []TransactionHistory
	err := historyQuery(p.db.WithContext(ctx), address, limit).Find(&histories).Error
	return histories, err
}

func historyQuery(db *gorm.DB, address string, limit int) *gorm.DB {
	return db.Model(&TransactionHistory{}).
		Where("payer = ? OR merkle_tree = ?", address, address).
		Order("created_at DESC").
		Limit(limit)
}

func historyUpdate(db *gorm.DB, transactionID, signature, status, errMsg string, now time.Time) *gorm.DB {
	updates := map[string]interface{}{
		"status": status,
	}
	if signature != "" {
		updates["signature"] = signature
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	if status == StatusConfirmed {
		updates["confirmed_at"] = now
	}
	return db.Model(&TransactionHistory{}).
		Where("transaction_id = ?", transactionID).
		Updates(updates)
}

func (p *SolChain) updateHistoryQuietly(ctx context.Context, transactionID, signature, status, errMsg string) {
	if err := p.UpdateHistoryStatus(ctx, transactionID, signature, status, errMsg); err != nil {
		p.logger.Warn("history update failed", zap.String("transaction_id", transactionID), zap.Error(err))
	}
}
