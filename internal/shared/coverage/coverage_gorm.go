package coverage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Model は data_coverage テーブルの GORM モデルです。
// (dataset, symbol) ごとに1行だけ保持します。
type Model struct {
	Dataset     string    `gorm:"primaryKey;size:32"`
	Symbol      string    `gorm:"primaryKey;size:32"`
	CoveredFrom time.Time `gorm:"not null"`
	CoveredTo   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

func (Model) TableName() string {
	return "data_coverage"
}

// Store は取得済み範囲を GORM で永続化します。
type Store struct {
	db *gorm.DB
}

// NewStore は Store を生成します。
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Find は記録済みの範囲を返します。記録が無い場合 ok は false です。
func (s *Store) Find(ctx context.Context, dataset, symbol string) (Span, bool, error) {
	var m Model
	err := s.db.WithContext(ctx).
		Where(map[string]any{"dataset": dataset, "symbol": symbol}).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Span{}, false, nil
	}
	if err != nil {
		return Span{}, false, err
	}
	return Span{From: Day(m.CoveredFrom), To: Day(m.CoveredTo)}, true, nil
}

// Save は範囲を上書き保存します。
func (s *Store) Save(ctx context.Context, dataset, symbol string, span Span) error {
	m := Model{Dataset: dataset, Symbol: symbol, CoveredFrom: Day(span.From), CoveredTo: Day(span.To)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dataset"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"covered_from", "covered_to", "updated_at"}),
	}).Create(&m).Error
}
