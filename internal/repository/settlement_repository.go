package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/pkg/database"
)

// SettlementRepository 매치 종료와 레이팅 반영을 한 트랜잭션으로 처리
// 종료 CAS(status='active' 조건)가 트랜잭션의 승패를 결정하므로
// 정산은 매치당 정확히 한 번만 적용된다.
type SettlementRepository struct {
	db *database.DB
}

func NewSettlementRepository(db *database.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

const completeIfActiveQuery = `
	UPDATE matches
	SET status = 'completed',
	    end_reason = $2,
	    agreement_validated = $3,
	    ended_at = COALESCE(ended_at, NOW())
	WHERE id = $1 AND status = 'active'
`

const applyDeltaQuery = `
	UPDATE profiles
	SET skill_rating = skill_rating + $2,
	    collab_rating = collab_rating + $3,
	    updated_at = NOW()
	WHERE user_id = $1
`

// FinalizeWithRatings 매치를 종료하고 양쪽 프로필에 레이팅 변화 적용
// CAS에서 진 경우(이미 종료됨) 아무것도 적용하지 않고 false 반환.
func (r *SettlementRepository) FinalizeWithRatings(
	ctx context.Context,
	matchID string,
	reason models.EndReason,
	validated bool,
	userA string, deltaA models.RatingDelta,
	userB string, deltaB models.RatingDelta,
) (bool, error) {
	won := false

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, completeIfActiveQuery, matchID, reason, validated)
		if err != nil {
			return fmt.Errorf("failed to complete match: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}

		if rows == 0 {
			return nil // 다른 경로가 먼저 종료함
		}

		if _, err := tx.ExecContext(ctx, applyDeltaQuery, userA, deltaA.SR, deltaA.CR); err != nil {
			return fmt.Errorf("failed to apply rating delta for user_a: %w", err)
		}
		if _, err := tx.ExecContext(ctx, applyDeltaQuery, userB, deltaB.SR, deltaB.CR); err != nil {
			return fmt.Errorf("failed to apply rating delta for user_b: %w", err)
		}

		won = true
		return nil
	})

	if err != nil {
		return false, err
	}

	return won, nil
}

// ForfeitWithPenalty 몰수 처리: 매치 종료 + 떠난 쪽에만 비율 차감
// 차감량은 현재 레이팅 기준 올림 계산 (SQL에서 원자적으로 수행)
func (r *SettlementRepository) ForfeitWithPenalty(ctx context.Context, matchID, leaverID string, rate float64) (bool, error) {
	won := false

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, completeIfActiveQuery, matchID, models.EndReasonForfeit, false)
		if err != nil {
			return fmt.Errorf("failed to complete match: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}

		if rows == 0 {
			return nil
		}

		penaltyQuery := `
			UPDATE profiles
			SET skill_rating = skill_rating - CEILING(skill_rating * $2)::int,
			    collab_rating = collab_rating - CEILING(collab_rating * $2)::int,
			    updated_at = NOW()
			WHERE user_id = $1
		`
		if _, err := tx.ExecContext(ctx, penaltyQuery, leaverID, rate); err != nil {
			return fmt.Errorf("failed to apply forfeit penalty: %w", err)
		}

		won = true
		return nil
	})

	if err != nil {
		return false, err
	}

	return won, nil
}
