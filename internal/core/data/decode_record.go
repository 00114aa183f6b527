package data

import (
	"time"

	"gorm.io/gorm"
)

// DecodeRecord is the stored report for one decoded segment of a pool.
type DecodeRecord struct {
	ID uint64 `gorm:"primaryKey"`

	// Source is the path of the container file the pool was read from.
	Source      string `gorm:"index; not null"`
	Chunk       string
	Name        string
	ChunkOffset int64
	PoolType    uint32

	Segment        string `gorm:"not null"`
	CompressedSize uint32
	DeclaredSize   uint32
	DecodedSize    uint32
	// Digest is the xxhash of the decoded bytes, as 16 hex digits.
	Digest    string
	Halt      string
	Truncated bool `gorm:"index"`

	CreatedAt time.Time
}

// FindDecodeRecords returns the records stored for source, or every record if
// source is empty.
func FindDecodeRecords(db *gorm.DB, source string) ([]DecodeRecord, error) {
	var records []DecodeRecord
	query := db.Order("id")
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindTruncatedRecords returns every record whose segment decoded short of its
// declared size.
func FindTruncatedRecords(db *gorm.DB) ([]DecodeRecord, error) {
	var records []DecodeRecord
	if err := db.Where("truncated = ?", true).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceDecodeRecords removes the records previously stored for source and
// persists records in their place.
func ReplaceDecodeRecords(db *gorm.DB, source string, records []DecodeRecord) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source = ?", source).Delete(&DecodeRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
}
