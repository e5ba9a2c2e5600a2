package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
)

// ManifestEntry is one record of the authoritative export from the legacy
// system: it already carries the file-to-matter linkage, so the manifest
// matcher only has to find the file on the remote store. Everything except
// match_status and matched_path is immutable after import.
type ManifestEntry struct {
	ID     int    `gorm:"primary_key" json:"id"`
	FirmId string `gorm:"index:idx_me_firm_status,priority:1;not null" json:"firm_id" binding:"required"`

	Name        string `gorm:"size:255;not null;index" json:"name"`
	SizeBytes   int64  `gorm:"default:0" json:"size_bytes"`
	MatterId    int    `gorm:"not null" json:"matter_id"`
	OwnerId     int    `gorm:"default:0" json:"owner_id"`
	ContentType string `gorm:"size:100" json:"content_type"`

	// MatchStatus is written exactly once per entry by the matcher.
	MatchStatus ManifestMatchStatus `gorm:"size:20;not null;default:'';index:idx_me_firm_status,priority:2" json:"match_status"`
	MatchedPath string              `gorm:"size:700" json:"matched_path"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PendingManifestChunk selects the next chunk of entries the matcher has not
// examined yet. The filter is the stable "not yet processed" predicate, never
// a positional offset: processed rows leave the result set by having their
// match_status written, so concurrent mutation cannot skip or duplicate rows.
// Dry runs don't write match_status, so they advance on afterId (keyset on
// the primary key, equally stable); live runs pass 0.
func PendingManifestChunk(ctx context.Context, firmId string, afterId int, limit int) ([]*ManifestEntry, error) {
	db := config.GetDB()
	var entries []*ManifestEntry
	err := db.WithContext(ctx).
		Where("firm_id = ? AND match_status = ? AND id > ?", firmId, ManifestMatchPending, afterId).
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkManifestMatched records the resolved path alongside the terminal status.
func MarkManifestMatched(ctx context.Context, firmId string, entryId int, matchedPath string) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&ManifestEntry{}).
		Where("firm_id = ? AND id = ?", firmId, entryId).
		Updates(map[string]interface{}{
			"match_status": ManifestMatchMatched,
			"matched_path": matchedPath,
		}).Error
}

func MarkManifestNotFound(ctx context.Context, firmId string, entryIds []int) error {
	if len(entryIds) == 0 {
		return nil
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(&ManifestEntry{}).
		Where("firm_id = ? AND id IN ?", firmId, entryIds).
		Updates(map[string]interface{}{"match_status": ManifestMatchNotFound}).Error
}

func CountManifestEntries(ctx context.Context, firmId string) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&ManifestEntry{}).
		Where("firm_id = ?", firmId).
		Count(&count).Error
	return count, err
}

// ResetManifestMatchStatus clears match results so a manifest scan can be
// replayed from scratch (ops tooling).
func ResetManifestMatchStatus(ctx context.Context, firmId string) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&ManifestEntry{}).
		Where("firm_id = ?", firmId).
		Updates(map[string]interface{}{
			"match_status": ManifestMatchPending,
			"matched_path": "",
		}).Error
}
