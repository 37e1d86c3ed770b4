package domain

import (
	"context"
	"errors"
)

type Service interface {
	GetByID(ctx context.Context, id string) (Course, error)
}

var (
	ErrInvalidCourse  = errors.New("invalid_course")
	ErrCourseNotFound = errors.New("course_not_found")
)
