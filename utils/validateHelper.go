package utils

import (
	"context"

	"github.com/mmdatafocus/lexfiles_backend/config"
)

// check if id exists, using ctx's firm_id in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, firmId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, firmId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

// counts rows of T for the firm matching the condition
func ResourceCountWhere[T any](ctx context.Context, firmId string, cond string, values ...interface{}) (int64, error) {
	db := config.GetDB()
	var model T
	var count int64
	err := db.WithContext(ctx).Model(&model).
		Where("firm_id = ?", firmId).
		Where(cond, values...).
		Count(&count).Error
	return count, err
}
