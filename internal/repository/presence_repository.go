package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/MoesLuis/debate-mvp/pkg/database"
)

type PresenceRepository struct {
	db *database.DB
}

func NewPresenceRepository(db *database.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// Touch 참가자의 last_seen 갱신 (하트비트마다 upsert)
func (r *PresenceRepository) Touch(ctx context.Context, roomToken, userID string) error {
	query := `
		INSERT INTO match_presence (room_token, user_id, last_seen)
		VALUES ($1, $2, NOW())
		ON CONFLICT (room_token, user_id)
		DO UPDATE SET last_seen = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, roomToken, userID); err != nil {
		return fmt.Errorf("failed to upsert presence: %w", err)
	}
	return nil
}

// LastSeen 매치의 참가자별 last_seen 조회
func (r *PresenceRepository) LastSeen(ctx context.Context, roomToken string) (map[string]time.Time, error) {
	query := `
		SELECT user_id, last_seen
		FROM match_presence
		WHERE room_token = $1
	`
	rows, err := r.db.QueryContext(ctx, query, roomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to query presence: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]time.Time)
	for rows.Next() {
		var userID string
		var lastSeen time.Time
		if err := rows.Scan(&userID, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan presence: %w", err)
		}
		seen[userID] = lastSeen
	}

	return seen, rows.Err()
}

// ClearRoom 매치 종료 후 presence 정리
func (r *PresenceRepository) ClearRoom(ctx context.Context, roomToken string) error {
	query := `DELETE FROM match_presence WHERE room_token = $1`
	if _, err := r.db.ExecContext(ctx, query, roomToken); err != nil {
		return fmt.Errorf("failed to clear presence: %w", err)
	}
	return nil
}
