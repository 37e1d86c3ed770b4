// Package seed bootstraps demo accounts and courses for local
// development.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"github.com/eduhub/api/internal/user/password"
	"gorm.io/gorm"
)

const demoPassword = "eduhub"

type demoUser struct {
	Name  string
	Email string
	Role  userdomain.Role
}

type demoCourse struct {
	Title           string
	Description     string
	InstructorEmail string
	Price           float64
	TotalLessons    int
}

var demoUsers = []demoUser{
	{Name: "Grace Hopper", Email: "grace@eduhub.dev", Role: userdomain.RoleInstructor},
	{Name: "Alan Kay", Email: "alan@eduhub.dev", Role: userdomain.RoleInstructor},
	{Name: "Ada Lovelace", Email: "ada@eduhub.dev", Role: userdomain.RoleStudent},
	{Name: "Linus Pauling", Email: "linus@eduhub.dev", Role: userdomain.RoleStudent},
	{Name: "EduHub Admin", Email: "admin@eduhub.dev", Role: userdomain.RoleAdmin},
}

var demoCourses = []demoCourse{
	{
		Title:           "Introduction to Go",
		Description:     "Syntax, tooling and the standard library.",
		InstructorEmail: "grace@eduhub.dev",
		Price:           49.90,
		TotalLessons:    12,
	},
	{
		Title:           "Distributed Systems Basics",
		Description:     "Consensus, replication and failure modes.",
		InstructorEmail: "grace@eduhub.dev",
		Price:           89.90,
		TotalLessons:    20,
	},
	{
		Title:           "Open Source Onboarding",
		Description:     "A free starter course for new contributors.",
		InstructorEmail: "alan@eduhub.dev",
		Price:           0,
		TotalLessons:    5,
	},
}

// EnsureDemoData inserts the demo users and courses once. Reruns are
// no-ops keyed on email and title.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		instructors := make(map[string]userdomain.User, len(demoUsers))
		for _, du := range demoUsers {
			user, err := ensureUser(ctx, tx, node, du)
			if err != nil {
				return err
			}
			instructors[user.Email] = user
		}

		for _, dc := range demoCourses {
			instructor, ok := instructors[dc.InstructorEmail]
			if !ok {
				return errors.New("seed course references unknown instructor")
			}
			if err := ensureCourse(ctx, tx, node, dc, instructor); err != nil {
				return err
			}
		}

		return nil
	})
}

func ensureUser(ctx context.Context, tx *gorm.DB, node *snowflake.Node, du demoUser) (userdomain.User, error) {
	var existing userdomain.User
	err := tx.WithContext(ctx).Raw(
		`SELECT id, name, email, password_hash, role, is_active, created_at, updated_at
		 FROM users WHERE email = ? LIMIT 1`,
		du.Email,
	).Scan(&existing).Error
	if err != nil {
		return userdomain.User{}, err
	}
	if existing.ID != 0 {
		return existing, nil
	}

	hash, err := password.Hash(demoPassword)
	if err != nil {
		return userdomain.User{}, err
	}

	now := time.Now().UTC()
	user := userdomain.User{
		ID:           node.Generate(),
		Name:         du.Name,
		Email:        du.Email,
		PasswordHash: hash,
		Role:         du.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = tx.WithContext(ctx).Exec(
		`INSERT INTO users (id, name, email, password_hash, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Error
	if err != nil {
		return userdomain.User{}, err
	}

	return user, nil
}

func ensureCourse(ctx context.Context, tx *gorm.DB, node *snowflake.Node, dc demoCourse, instructor userdomain.User) error {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM courses WHERE title = ? AND instructor_id = ?`,
		dc.Title, instructor.ID,
	).Scan(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	course := coursedomain.Course{
		ID:             node.Generate(),
		Title:          dc.Title,
		InstructorID:   instructor.ID,
		InstructorName: instructor.Name,
		Price:          dc.Price,
		TotalLessons:   dc.TotalLessons,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return tx.WithContext(ctx).Exec(
		`INSERT INTO courses (id, title, description, instructor_id, instructor_name, price, total_lessons, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		course.ID, course.Title, dc.Description, course.InstructorID, course.InstructorName,
		course.Price, course.TotalLessons, course.IsActive, course.CreatedAt, course.UpdatedAt,
	).Error
}
