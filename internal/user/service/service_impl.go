package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo userdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo userdomain.Repository
}

func NewService(p ServiceParam) userdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("user.service"),
		repo: p.Repo,
	}
}

// GetByID implements domain.Service.
func (s *Service) GetByID(ctx context.Context, id string) (userdomain.User, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || userID == 0 {
		return userdomain.User{}, userdomain.ErrInvalidUser
	}

	item, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return userdomain.User{}, err
	}
	if item == nil {
		return userdomain.User{}, userdomain.ErrUserNotFound
	}

	return *item, nil
}
