package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() coursedomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*coursedomain.Course, error) {
	var course coursedomain.Course
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, description, instructor_id, instructor_name, price, total_lessons,
		 is_active, created_at, updated_at
		 FROM courses WHERE id = ?`,
		id,
	).Scan(&course).Error
	if err != nil {
		return nil, err
	}
	if course.ID == 0 {
		return nil, nil
	}
	return &course, nil
}
