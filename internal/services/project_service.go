// File: internal/services/project_service.go
package services

import (
    "context"
    "errors"
    "strings"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/repository/chat"
    "github.com/iyunix/go-visionai/internal/repository/project"
    chatservice "github.com/iyunix/go-visionai/internal/services/chat"
    "github.com/iyunix/go-visionai/internal/services/chatcache"
    "github.com/iyunix/go-visionai/internal/services/logging"
)

type ProjectService struct {
    projectRepo project.ProjectRepository
    chatRepo    chat.ChatRepository
    listings    *chatcache.Cache
    logger      logging.Logger
}

func NewProjectService(projectRepo project.ProjectRepository, chatRepo chat.ChatRepository, listings *chatcache.Cache, logger logging.Logger) *ProjectService {
    if listings == nil {
        listings = chatcache.NewDefault()
    }
    if logger == nil {
        logger = &logging.NoOpLogger{}
    }
    return &ProjectService{projectRepo: projectRepo, chatRepo: chatRepo, listings: listings, logger: logger}
}

func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
    projects, err := s.projectRepo.FindByUserID(ctx, userID)
    if err != nil {
        return nil, chatservice.NewPersistenceError("list_projects", "could not list projects", err)
    }
    return projects, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, userID, title string) (*domain.Project, error) {
    if strings.TrimSpace(title) == "" {
        return nil, chatservice.NewValidationError("create_project", "Title is required")
    }
    created, err := s.projectRepo.Create(ctx, &domain.Project{UserID: userID, Title: title})
    if err != nil {
        return nil, chatservice.NewPersistenceError("create_project", "could not create project", err)
    }
    s.logger.Info("project created", "project_id", created.ID, "user_id", userID)
    return created, nil
}

// ListChats returns the chats on one of the user's projects. A listing is only
// cached after the ownership check passed for this user.
func (s *ProjectService) ListChats(ctx context.Context, userID, projectID string) ([]domain.ChatSummary, error) {
    if cached, ok := s.listings.ProjectChats(userID, projectID); ok {
        return cached, nil
    }
    tok := s.listings.Token(userID)
    if _, err := s.projectRepo.FindByIDAndUserID(ctx, projectID, userID); err != nil {
        if errors.Is(err, project.ErrProjectNotFound) {
            return nil, chatservice.NewNotFoundError("project_chats", "Project not found")
        }
        return nil, chatservice.NewPersistenceError("project_chats", "could not load project", err)
    }

    chats, err := s.chatRepo.FindByProjectID(ctx, projectID, userID)
    if err != nil {
        return nil, chatservice.NewPersistenceError("project_chats", "could not list chats", err)
    }
    s.listings.SetProjectChats(userID, projectID, tok, chats)
    return chats, nil
}
