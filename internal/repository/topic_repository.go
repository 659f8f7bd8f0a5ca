package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/pkg/database"
)

type TopicRepository struct {
	db *database.DB
}

func NewTopicRepository(db *database.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// ListAll 전체 주제 목록
func (r *TopicRepository) ListAll(ctx context.Context) ([]models.Topic, error) {
	query := `
		SELECT id, title, created_at
		FROM topics
		ORDER BY title ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var topic models.Topic
		if err := rows.Scan(&topic.ID, &topic.Title, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}

	return topics, rows.Err()
}

// ListUserTopicIDs 사용자가 팔로우한 주제 ID 목록
func (r *TopicRepository) ListUserTopicIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT topic_id
		FROM user_topics
		WHERE user_id = $1
		ORDER BY topic_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user topics: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan topic id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ReplaceUserTopics 사용자의 팔로우 주제를 통째로 교체
func (r *TopicRepository) ReplaceUserTopics(ctx context.Context, userID string, topicIDs []string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_topics WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear user topics: %w", err)
		}

		if len(topicIDs) == 0 {
			return nil
		}

		insertQuery := `
			INSERT INTO user_topics (user_id, topic_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, insertQuery, userID, pq.Array(topicIDs)); err != nil {
			return fmt.Errorf("failed to insert user topics: %w", err)
		}

		return nil
	})
}
