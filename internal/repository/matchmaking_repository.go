package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/pkg/database"
)

type MatchmakingRepository struct {
	db *database.DB
}

func NewMatchmakingRepository(db *database.DB) *MatchmakingRepository {
	return &MatchmakingRepository{db: db}
}

// Upsert 매칭 큐에 사용자 추가 (user_id 기준, 사용자당 항목 하나 보장)
func (r *MatchmakingRepository) Upsert(ctx context.Context, userID, topicID string) error {
	query := `
		INSERT INTO queue (user_id, topic_id, enqueued_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			topic_id = EXCLUDED.topic_id,
			enqueued_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, topicID); err != nil {
		return fmt.Errorf("failed to enqueue user: %w", err)
	}
	return nil
}

// Remove 큐에서 제거
func (r *MatchmakingRepository) Remove(ctx context.Context, userID string) error {
	query := `DELETE FROM queue WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}
	return nil
}

// PairWithWaiting 대기 중인 호환 사용자를 원자적으로 claim하고 매치 생성
// 트랜잭션 순서는 고정: 본인 큐 항목 삭제 → 진행 중 매치 재확인 →
// claim → 매치 INSERT. 본인 항목 삭제가 행 잠금을 잡으므로 동시에
// 요청자를 claim 중인 다른 트랜잭션과 직렬화되고, 이어지는 재확인이
// 그 사이 커밋된 매치를 잡아낸다 (사용자당 진행 중 매치 하나 보장).
// 두 번째 반환값은 새 매치 생성 여부: false면 재확인에서 발견된 기존
// 매치. 대기자도 기존 매치도 없으면 (nil, false, nil).
func (r *MatchmakingRepository) PairWithWaiting(ctx context.Context, requesterID, roomToken string, topicIDs []string) (*models.Match, bool, error) {
	var match *models.Match
	created := false

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// 본인 큐 항목 먼저 삭제: 다른 요청이 이 행을 claim하는 중이면
		// 여기서 그 커밋을 기다린다
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue WHERE user_id = $1`, requesterID); err != nil {
			return fmt.Errorf("failed to remove requester queue entry: %w", err)
		}

		// 잠금 대기 중 다른 요청이 요청자를 먼저 매칭했을 수 있으므로 재확인
		existingQuery := `SELECT` + matchColumns + `
			FROM matches
			WHERE status = 'active' AND (user_a = $1 OR user_b = $1)
			LIMIT 1
		`
		existing, err := scanMatch(tx.QueryRowContext(ctx, existingQuery, requesterID))
		if err != nil {
			return err
		}
		if existing != nil {
			match = existing
			return nil
		}

		// 가장 오래 기다린 호환 항목을 잠그면서 삭제
		// SKIP LOCKED: 동시 요청자는 다음 후보로 넘어간다
		claimQuery := `
			DELETE FROM queue
			WHERE user_id = (
				SELECT user_id FROM queue
				WHERE topic_id = ANY($1) AND user_id <> $2
				ORDER BY enqueued_at ASC
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING user_id, topic_id, enqueued_at
		`

		entry := &models.QueueEntry{}
		err = tx.QueryRowContext(ctx, claimQuery, pq.Array(topicIDs), requesterID).Scan(
			&entry.UserID,
			&entry.TopicID,
			&entry.EnqueuedAt,
		)

		if err == sql.ErrNoRows {
			return nil // 상대 없음
		}
		if err != nil {
			return fmt.Errorf("failed to claim queue entry: %w", err)
		}

		insertQuery := `
			INSERT INTO matches (room_token, user_a, user_b, topic_id, status)
			VALUES ($1, $2, $3, $4, 'active')
			RETURNING` + matchColumns

		match = &models.Match{}
		err = tx.QueryRowContext(ctx, insertQuery, roomToken, entry.UserID, requesterID, entry.TopicID).Scan(
			&match.ID,
			&match.RoomToken,
			&match.UserA,
			&match.UserB,
			&match.TopicID,
			&match.Status,
			&match.EndReason,
			&match.UserAOutcome,
			&match.UserAStatement,
			&match.UserBOutcome,
			&match.UserBStatement,
			&match.AgreementValidated,
			&match.CreatedAt,
			&match.EndedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}

		created = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}

	return match, created, nil
}
