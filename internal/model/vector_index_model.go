package model

import "time"

type VectorIndex struct {
	Name           string    `gorm:"type:varchar(45);primaryKey"`
	SessionID      string    `gorm:"type:varchar(64);index"`
	Dimension      int       `gorm:"not null"`
	EmbeddingModel string    `gorm:"type:varchar(100);not null"`
	Generation     int       `gorm:"default:1"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (VectorIndex) TableName() string {
	return "vector_indexes"
}
