package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/lexfiles_backend/config"
	"github.com/mmdatafocus/lexfiles_backend/utils"
)

type Matter struct {
	ID           int          `gorm:"primary_key" json:"id"`
	FirmId       string       `gorm:"index;not null" json:"firm_id" binding:"required"`
	ClientName   string       `gorm:"size:150" json:"client_name"`
	Name         string       `gorm:"size:255;not null" json:"name" binding:"required"`
	MatterNumber string       `gorm:"size:50;index" json:"matter_number"`
	Status       MatterStatus `gorm:"type:enum('Open','Closed');not null;default:'Open'" json:"status"`
	OwnerId      int          `gorm:"default:0" json:"owner_id"`
	Notes        string       `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMatter struct {
	ClientName   string `json:"client_name"`
	Name         string `json:"name" binding:"required"`
	MatterNumber string `json:"matter_number"`
	OwnerId      int    `json:"owner_id"`
	Notes        string `json:"notes"`
}

func (input *NewMatter) validate(ctx context.Context, firmId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Matter](ctx, firmId, id); err != nil {
			return err
		}
	}
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("matter name is required")
	}
	return nil
}

func CreateMatter(ctx context.Context, input *NewMatter) (*Matter, error) {
	db := config.GetDB()
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok {
		return nil, errors.New("firm id not found")
	}

	if err := input.validate(ctx, firmId, 0); err != nil {
		return nil, err
	}

	matter := Matter{
		FirmId:       firmId,
		ClientName:   strings.TrimSpace(input.ClientName),
		Name:         strings.TrimSpace(input.Name),
		MatterNumber: strings.TrimSpace(input.MatterNumber),
		Status:       MatterStatusOpen,
		OwnerId:      input.OwnerId,
		Notes:        input.Notes,
	}
	if err := db.WithContext(ctx).Create(&matter).Error; err != nil {
		return nil, err
	}
	return &matter, nil
}

// GetMattersForIndex loads the fields the heuristic matcher indexes.
// Matter counts are bounded per firm, so one read is fine.
func GetMattersForIndex(ctx context.Context, firmId string) ([]*Matter, error) {
	db := config.GetDB()
	var matters []*Matter
	err := db.WithContext(ctx).Model(&Matter{}).
		Where("firm_id = ?", firmId).
		Select("id", "firm_id", "client_name", "name", "matter_number", "owner_id").
		Find(&matters).Error
	if err != nil {
		return nil, err
	}
	return matters, nil
}

func GetMatter(ctx context.Context, id int) (*Matter, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok {
		return nil, errors.New("firm id not found")
	}
	return utils.FetchModel[Matter](ctx, firmId, id)
}
