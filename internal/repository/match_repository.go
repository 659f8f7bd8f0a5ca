package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/pkg/database"
)

const matchColumns = `
	id, room_token, user_a, user_b, topic_id, status, end_reason,
	user_a_outcome, user_a_statement, user_b_outcome, user_b_statement,
	agreement_validated, created_at, ended_at`

type MatchRepository struct {
	db *database.DB
}

func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func scanMatch(row *sql.Row) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
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

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	return match, nil
}

// FindByRoomToken 룸 토큰으로 매치 조회
func (r *MatchRepository) FindByRoomToken(ctx context.Context, roomToken string) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE room_token = $1
	`
	return scanMatch(r.db.QueryRowContext(ctx, query, roomToken))
}

// FindActiveByUser 사용자의 진행 중인 매치 조회 (사용자당 최대 하나)
func (r *MatchRepository) FindActiveByUser(ctx context.Context, userID string) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE status = 'active' AND (user_a = $1 OR user_b = $1)
		ORDER BY created_at ASC
		LIMIT 1
	`
	return scanMatch(r.db.QueryRowContext(ctx, query, userID))
}

// CompleteIfActive active 상태일 때만 매치 종료 (CAS)
// 하트비트/제출/몰수 경로가 경합해도 정확히 하나의 경로만 종료를 수행한다.
func (r *MatchRepository) CompleteIfActive(ctx context.Context, matchID string, reason models.EndReason, validated bool) (bool, error) {
	query := `
		UPDATE matches
		SET status = 'completed',
		    end_reason = $2,
		    agreement_validated = $3,
		    ended_at = COALESCE(ended_at, NOW())
		WHERE id = $1 AND status = 'active'
	`
	result, err := r.db.ExecContext(ctx, query, matchID, reason, validated)
	if err != nil {
		return false, fmt.Errorf("failed to complete match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return rows == 1, nil
}

// SaveSubmission 참가자 한 쪽의 outcome/statement 저장 (항상 쌍으로 기록)
// ended_at은 첫 제출에서만 설정된다. 매치가 이미 종료되었으면 nil 반환.
func (r *MatchRepository) SaveSubmission(ctx context.Context, matchID string, side models.Side, outcome models.Outcome, statement string) (*models.Match, error) {
	var query string
	if side == models.SideA {
		query = `
			UPDATE matches
			SET user_a_outcome = $2,
			    user_a_statement = $3,
			    ended_at = COALESCE(ended_at, NOW())
			WHERE id = $1 AND status = 'active'
			RETURNING` + matchColumns
	} else {
		query = `
			UPDATE matches
			SET user_b_outcome = $2,
			    user_b_statement = $3,
			    ended_at = COALESCE(ended_at, NOW())
			WHERE id = $1 AND status = 'active'
			RETURNING` + matchColumns
	}

	return scanMatch(r.db.QueryRowContext(ctx, query, matchID, outcome, statement))
}

// ClearSubmission 참가자 한 쪽의 제출 철회 (active 매치만)
func (r *MatchRepository) ClearSubmission(ctx context.Context, matchID string, side models.Side) error {
	var query string
	if side == models.SideA {
		query = `
			UPDATE matches
			SET user_a_outcome = NULL, user_a_statement = NULL, agreement_validated = NULL
			WHERE id = $1 AND status = 'active'
		`
	} else {
		query = `
			UPDATE matches
			SET user_b_outcome = NULL, user_b_statement = NULL, agreement_validated = NULL
			WHERE id = $1 AND status = 'active'
		`
	}

	if _, err := r.db.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("failed to clear submission: %w", err)
	}

	return nil
}
