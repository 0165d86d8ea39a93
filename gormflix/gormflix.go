package gormflix

import (
	"context"

	"github.com/go-sqlt/paperflix"
	"gorm.io/gorm"
)

type Measurement struct {
	ID     int64 `gorm:"primaryKey"`
	Figure string
	Series string
	X      float64
	Y      float64
}

type Repository struct {
	DB *gorm.DB
}

func (r Repository) QueryMeasurements(ctx context.Context, params paperflix.MeasurementParams) ([]paperflix.Measurement, error) {
	var rows = make([]Measurement, 0, params.Limit)

	query := r.DB.WithContext(ctx).Table("measurements").
		Select("id", "series", "x", "y").
		Where("figure = ?", params.Figure)

	if len(params.Groups) > 0 {
		query = query.Where("series IN ?", params.Groups)
	}

	if params.Limit > 0 {
		query = query.Limit(int(params.Limit))
	}

	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	measurements := make([]paperflix.Measurement, len(rows))

	for i, m := range rows {
		measurements[i] = paperflix.Measurement{
			Group: m.Series,
			X:     m.X,
			Y:     m.Y,
		}
	}

	return measurements, nil
}
