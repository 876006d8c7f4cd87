package specification

import "gorm.io/gorm"

type ByIndexName struct {
	IndexName string
}

func (s ByIndexName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("index_name = ?", s.IndexName)
}

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type BySourceFilename struct {
	Filename string
}

func (s BySourceFilename) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_filename = ?", s.Filename)
}
