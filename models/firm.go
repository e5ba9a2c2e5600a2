package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lexfiles_backend/config"
)

type Firm struct {
	ID          uuid.UUID `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	ContactName string    `gorm:"size:100" json:"contact_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Timezone    string    `gorm:"size:50" json:"timezone"`

	// Remote document store configuration for the legacy bulk copy.
	// A firm without a configured root cannot be scanned.
	RemoteBucket string `gorm:"size:255" json:"remote_bucket"`
	RemoteRoot   string `gorm:"size:512" json:"remote_root"`

	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFirm struct {
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contact_name"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	Timezone     string `json:"timezone"`
	RemoteBucket string `json:"remote_bucket"`
	RemoteRoot   string `json:"remote_root"`
}

func CreateFirm(ctx context.Context, input *NewFirm) (*Firm, error) {
	db := config.GetDB()

	firm := Firm{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		ContactName:  input.ContactName,
		Email:        input.Email,
		Phone:        input.Phone,
		Timezone:     input.Timezone,
		RemoteBucket: input.RemoteBucket,
		RemoteRoot:   input.RemoteRoot,
	}
	if firm.Name == "" {
		return nil, errors.New("firm name is required")
	}
	if err := db.WithContext(ctx).Create(&firm).Error; err != nil {
		return nil, err
	}
	return &firm, nil
}

func GetFirmById(ctx context.Context, firmId string) (*Firm, error) {
	db := config.GetDB()
	var firm Firm
	if err := db.WithContext(ctx).Where("id = ?", firmId).Take(&firm).Error; err != nil {
		return nil, errors.New("firm not found")
	}
	return &firm, nil
}
