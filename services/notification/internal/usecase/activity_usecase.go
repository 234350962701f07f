package usecase

import (
	"fmt"

	"draftroom/pkg/logger"
	"draftroom/services/notification/internal/entity"
	"draftroom/services/notification/internal/repo/persistent"
	"draftroom/services/notification/internal/store"
)

type ActivityUseCase interface {
	ProjectFeed(projectID string, limit int) []entity.ActivityFeedItem
	UserFeed(userID string, limit int) ([]entity.ActivityFeedItem, error)
	ProjectsForUser(userID string) ([]entity.ProjectRef, error)
}

type activityUseCase struct {
	feed     *store.ActivityFeed
	resolver persistent.CollaboratorResolver
	logger   *logger.Logger
}

func NewActivityUseCase(feed *store.ActivityFeed, resolver persistent.CollaboratorResolver, log *logger.Logger) ActivityUseCase {
	return &activityUseCase{feed: feed, resolver: resolver, logger: log}
}

func (uc *activityUseCase) ProjectFeed(projectID string, limit int) []entity.ActivityFeedItem {
	return uc.feed.List(projectID, limit)
}

// UserFeed aggregates activity across every project the user belongs to,
// newest first.
func (uc *activityUseCase) UserFeed(userID string, limit int) ([]entity.ActivityFeedItem, error) {
	projects, err := uc.resolver.ProjectsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects for user %s: %w", userID, err)
	}

	projectIDs := make([]string, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
	}
	return uc.feed.ListForProjects(projectIDs, limit), nil
}

func (uc *activityUseCase) ProjectsForUser(userID string) ([]entity.ProjectRef, error) {
	return uc.resolver.ProjectsForUser(userID)
}
