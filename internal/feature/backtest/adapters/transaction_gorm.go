// Package adapters は backtest フィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionGorm struct {
	db *gorm.DB
}

var _ usecase.TransactionRepository = (*transactionGorm)(nil)

// NewTransactionRepository は取引履歴のリポジトリを生成します。
func NewTransactionRepository(db *gorm.DB) *transactionGorm {
	return &transactionGorm{db: db}
}

// TransactionModel は backtest_transactions テーブルの GORM モデルです。
type TransactionModel struct {
	ID              uint            `gorm:"primaryKey"`
	SessionID       string          `gorm:"size:36;not null;index"`
	Symbol          string          `gorm:"size:32;not null"`
	TransactionDate time.Time       `gorm:"not null"`
	Type            string          `gorm:"size:8;not null"`
	Quantity        int64           `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	TotalCost       decimal.Decimal `gorm:"type:numeric(24,8);not null"`
	CreatedAt       time.Time
}

func (TransactionModel) TableName() string {
	return "backtest_transactions"
}

func toModel(t entity.Transaction) TransactionModel {
	return TransactionModel{
		SessionID:       t.SessionID,
		Symbol:          t.Symbol,
		TransactionDate: t.TransactionDate,
		Type:            string(t.Type),
		Quantity:        t.Quantity,
		Price:           t.Price,
		TotalCost:       t.TotalCost,
	}
}

func (m TransactionModel) toEntity() entity.Transaction {
	y, mo, d := m.TransactionDate.Date()
	return entity.Transaction{
		SessionID:       m.SessionID,
		Symbol:          m.Symbol,
		TransactionDate: time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		Type:            entity.TransactionType(m.Type),
		Quantity:        m.Quantity,
		Price:           m.Price,
		TotalCost:       m.TotalCost,
	}
}

// SaveAll は取引をまとめて保存します。
func (r *transactionGorm) SaveAll(ctx context.Context, txs []entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	ms := make([]TransactionModel, 0, len(txs))
	for _, t := range txs {
		ms = append(ms, toModel(t))
	}
	return r.db.WithContext(ctx).CreateInBatches(&ms, 500).Error
}

// FindBySession はセッションの取引を取引日順に返します。
func (r *transactionGorm) FindBySession(ctx context.Context, sessionID string) ([]entity.Transaction, error) {
	var rows []TransactionModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("transaction_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Transaction, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}
