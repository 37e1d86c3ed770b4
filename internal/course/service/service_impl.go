package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo coursedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo coursedomain.Repository
}

func NewService(p ServiceParam) coursedomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("course.service"),
		repo: p.Repo,
	}
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id string) (coursedomain.Course, error) {
	courseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || courseID == 0 {
		return coursedomain.Course{}, coursedomain.ErrInvalidCourse
	}

	item, err := s.repo.FindByID(ctx, s.db, courseID)
	if err != nil {
		return coursedomain.Course{}, err
	}
	if item == nil {
		return coursedomain.Course{}, coursedomain.ErrCourseNotFound
	}

	return *item, nil
}
