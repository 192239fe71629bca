package project

import (
	"context"

	"github.com/iyunix/go-visionai/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	FindByIDAndUserID(ctx context.Context, projectID, userID string) (*domain.Project, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Project, error)
}
