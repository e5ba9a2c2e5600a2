package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileDocument is the reconciliation target: one row per file discovered in
// the firm's remote store, optionally linked to the matter it belongs to.
// (firm_id, path) is the identity; reconciliation must never produce two rows
// for the same path.
type FileDocument struct {
	ID     int    `gorm:"primary_key" json:"id"`
	FirmId string `gorm:"uniqueIndex:idx_fd_firm_path,priority:1;not null" json:"firm_id" binding:"required"`

	// MatterId stays NULL until a matcher (or an operator) assigns it.
	// A non-null value is never overwritten by automated matching.
	MatterId *int `gorm:"index" json:"matter_id"`
	OwnerId  *int `json:"owner_id"`

	Name       string `gorm:"size:255;not null" json:"name"`
	Path       string `gorm:"uniqueIndex:idx_fd_firm_path,priority:2;size:700;not null" json:"path"`
	FolderPath string `gorm:"size:700;index" json:"folder_path"`

	ContentType     string          `gorm:"size:100" json:"content_type"`
	SizeBytes       int64           `gorm:"default:0" json:"size_bytes"`
	PrivacyLevel    PrivacyLevel    `gorm:"type:enum('Firm','Matter','Private');not null;default:'Firm'" json:"privacy_level"`
	Status          DocumentStatus  `gorm:"type:enum('Active','Archived');not null;default:'Active'" json:"status"`
	StorageLocation StorageLocation `gorm:"type:enum('Remote','Cloud');not null;default:'Remote'" json:"storage_location"`
	ExternalPath    string          `gorm:"size:700" json:"external_path"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertFileDocument inserts the document or, when a row already exists at
// (firm_id, path), refreshes it. The conflict rule is what makes repeated
// scans safe: matter_id is only filled when the existing value is NULL, so a
// prior automated match or a manual correction is never clobbered.
// Returns true when a new row was actually inserted.
func UpsertFileDocument(ctx context.Context, doc *FileDocument) (bool, error) {
	if doc.FirmId == "" || doc.Path == "" {
		return false, errors.New("firm_id and path are required")
	}
	db := config.GetDB()

	res := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "firm_id"}, {Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"matter_id":    gorm.Expr("IF(matter_id IS NULL, VALUES(matter_id), matter_id)"),
			"owner_id":     gorm.Expr("IF(owner_id IS NULL, VALUES(owner_id), owner_id)"),
			"size_bytes":   gorm.Expr("VALUES(size_bytes)"),
			"content_type": gorm.Expr("VALUES(content_type)"),
			"updated_at":   time.Now().UTC(),
		}),
	}).Create(doc)
	if res.Error != nil {
		return false, res.Error
	}
	// MySQL reports 1 affected row for an insert, 2 for an update through
	// ON DUPLICATE KEY.
	return res.RowsAffected == 1, nil
}

// FileDocumentExists reports whether a row exists at (firm_id, path).
// Used by dry runs to compute the created counter without writing.
func FileDocumentExists(ctx context.Context, firmId string, path string) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&FileDocument{}).
		Where("firm_id = ? AND path = ?", firmId, path).
		Count(&count).Error
	return count > 0, err
}

// FillMatterIfNull assigns a matter to the document only if no matter is set.
// Returns true when the row was updated.
func FillMatterIfNull(ctx context.Context, firmId string, documentId int, matterId int) (bool, error) {
	db := config.GetDB()
	res := db.WithContext(ctx).Model(&FileDocument{}).
		Where("firm_id = ? AND id = ? AND matter_id IS NULL", firmId, documentId).
		Updates(map[string]interface{}{"matter_id": matterId})
	return res.RowsAffected > 0, res.Error
}

// UnmatchedDocumentsInBatches streams documents with no matter assigned.
// FindInBatches pages on the primary key, so rows matched (and mutated)
// mid-pass are neither skipped nor revisited.
func UnmatchedDocumentsInBatches(ctx context.Context, firmId string, batchSize int, fn func(docs []*FileDocument) error) error {
	db := config.GetDB()
	var batch []*FileDocument
	result := db.WithContext(ctx).
		Where("firm_id = ? AND matter_id IS NULL", firmId).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}

// AssignMatterToDocuments sets the matter on an explicit id list, bypassing
// the null-only rule (operator intent wins over automated matches).
func AssignMatterToDocuments(ctx context.Context, firmId string, matterId int, documentIds []int) (int64, error) {
	if len(documentIds) == 0 {
		return 0, nil
	}
	db := config.GetDB()
	res := db.WithContext(ctx).Model(&FileDocument{}).
		Where("firm_id = ? AND id IN ?", firmId, documentIds).
		Updates(map[string]interface{}{"matter_id": matterId})
	return res.RowsAffected, res.Error
}

// AssignMatterToFolder sets the matter on every still-unmatched document
// under the folder-path prefix.
func AssignMatterToFolder(ctx context.Context, firmId string, matterId int, folderPrefix string) (int64, error) {
	db := config.GetDB()
	res := db.WithContext(ctx).Model(&FileDocument{}).
		Where("firm_id = ? AND matter_id IS NULL AND folder_path LIKE ?", firmId, folderPrefix+"%").
		Updates(map[string]interface{}{"matter_id": matterId})
	return res.RowsAffected, res.Error
}

func CountFileDocuments(ctx context.Context, firmId string) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&FileDocument{}).
		Where("firm_id = ?", firmId).
		Count(&count).Error
	return count, err
}

func CountUnmatchedFileDocuments(ctx context.Context, firmId string) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&FileDocument{}).
		Where("firm_id = ? AND matter_id IS NULL", firmId).
		Count(&count).Error
	return count, err
}
