package project

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iyunix/go-visionai/internal/domain"
)

var ErrProjectNotFound = errors.New("project not found")

const maxTitleLength = 200

type gormProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if err := validateProjectInput(project); err != nil {
		log.Printf("[ProjectRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	project.Title = strings.TrimSpace(project.Title)

	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		log.Printf("[ProjectRepository] Database error during project creation for user %s: %v", project.UserID, err)
		return nil, errors.New("database error creating project")
	}

	log.Printf("[ProjectRepository] Project created successfully with ID: %s for user: %s", project.ID, project.UserID)
	return project, nil
}

func (r *gormProjectRepository) FindByIDAndUserID(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	if projectID == "" || userID == "" {
		return nil, errors.New("invalid project ID or user ID")
	}

	var project domain.Project
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		log.Printf("[ProjectRepository] FindByIDAndUserID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &project, nil
}

// FindByUserID lists a user's projects, newest first.
func (r *gormProjectRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Project, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	projects := []domain.Project{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&projects).Error
	if err != nil {
		log.Printf("[ProjectRepository] Database error listing projects for user %s: %v", userID, err)
		return nil, errors.New("database error fetching projects")
	}
	return projects, nil
}

func validateProjectInput(project *domain.Project) error {
	if project == nil {
		return errors.New("project cannot be nil")
	}
	if project.UserID == "" {
		return errors.New("user ID is required")
	}
	title := strings.TrimSpace(project.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be %d characters or less", maxTitleLength)
	}
	return nil
}
