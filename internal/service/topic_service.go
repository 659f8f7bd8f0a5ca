package service

import (
	"context"
	"fmt"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/internal/repository"
)

type TopicService struct {
	topicRepo *repository.TopicRepository
}

func NewTopicService(topicRepo *repository.TopicRepository) *TopicService {
	return &TopicService{topicRepo: topicRepo}
}

// ListTopics 전체 주제 목록 조회
func (s *TopicService) ListTopics(ctx context.Context) ([]models.Topic, error) {
	topics, err := s.topicRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// GetUserTopics 사용자가 팔로우한 주제 ID 목록 조회
func (s *TopicService) GetUserTopics(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.topicRepo.ListUserTopicIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user topics: %w", err)
	}
	return ids, nil
}

// SetUserTopics 사용자 팔로우 주제 전체 교체
func (s *TopicService) SetUserTopics(ctx context.Context, userID string, topicIDs []string) error {
	if err := s.topicRepo.ReplaceUserTopics(ctx, userID, topicIDs); err != nil {
		return fmt.Errorf("failed to replace user topics: %w", err)
	}
	return nil
}
