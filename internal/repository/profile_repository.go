package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/pkg/database"
)

type ProfileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create 기본 레이팅으로 프로필 생성 (가입 시)
func (r *ProfileRepository) Create(ctx context.Context, userID string) error {
	query := `
		INSERT INTO profiles (user_id, skill_rating, collab_rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, models.DefaultSkillRating, models.DefaultCollabRating); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// FindByUserID 프로필 조회
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, skill_rating, collab_rating, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.SkillRating,
		&profile.CollabRating,
		&profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}
