// Package adapters は dividends フィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"stock_backtest/internal/feature/dividends/domain/entity"
	"stock_backtest/internal/feature/dividends/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dividendGorm struct {
	db *gorm.DB
}

var _ usecase.DividendRepository = (*dividendGorm)(nil)

// NewDividendRepository は指定されたDB接続で配当リポジトリを生成します。
func NewDividendRepository(db *gorm.DB) *dividendGorm {
	return &dividendGorm{db: db}
}

// DividendModel は dividend_events テーブルの GORM モデルです。
type DividendModel struct {
	ID         uint      `gorm:"primaryKey"`
	Symbol     string    `gorm:"size:32;not null;uniqueIndex:dividend_sym_ex,priority:1"`
	ExDate     time.Time `gorm:"not null;uniqueIndex:dividend_sym_ex,priority:2"`
	PayDate    *time.Time
	RecordDate *time.Time
	Amount     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
}

func (DividendModel) TableName() string {
	return "dividend_events"
}

func toModel(e entity.DividendEvent) DividendModel {
	return DividendModel{
		Symbol:     e.Symbol,
		ExDate:     truncate(e.ExDate),
		PayDate:    e.PayDate,
		RecordDate: e.RecordDate,
		Amount:     e.Amount,
	}
}

func (m DividendModel) toEntity() entity.DividendEvent {
	return entity.DividendEvent{
		Symbol:     m.Symbol,
		ExDate:     truncate(m.ExDate),
		PayDate:    m.PayDate,
		RecordDate: m.RecordDate,
		Amount:     m.Amount,
	}
}

func (r *dividendGorm) UpsertBatch(ctx context.Context, events []entity.DividendEvent) error {
	if len(events) == 0 {
		return nil
	}
	ms := make([]DividendModel, 0, len(events))
	for _, e := range events {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "ex_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"pay_date", "record_date", "amount"}),
	}).CreateInBatches(&ms, 500).Error
}

func (r *dividendGorm) FindRange(ctx context.Context, symbol string, from, to time.Time) ([]entity.DividendEvent, error) {
	var rows []DividendModel
	q := r.db.WithContext(ctx).Where("symbol = ?", symbol)
	if !from.IsZero() {
		q = q.Where("ex_date >= ?", truncate(from))
	}
	if !to.IsZero() {
		q = q.Where("ex_date <= ?", truncate(to))
	}
	if err := q.Order("ex_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.DividendEvent, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
