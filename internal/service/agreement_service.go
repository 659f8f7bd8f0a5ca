package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

// 제출 statement 최소 길이
const minStatementLength = 10

// AgreementService 종료 합의 프로토콜 처리
// 양쪽 제출이 모이면 정산이 정확히 한 번 실행된다. 보장은 저장소의
// CAS 종료 조건에서 나오며, 애플리케이션 플래그 재확인에 의존하지 않는다.
type AgreementService struct {
	matches    MatchStore
	presence   PresenceStore
	settlement SettlementStore
	ratings    *RatingService
	notifier   Notifier
	logger     *zap.Logger
}

func NewAgreementService(
	matches MatchStore,
	presence PresenceStore,
	settlement SettlementStore,
	ratings *RatingService,
	notifier Notifier,
	logger *zap.Logger,
) *AgreementService {
	return &AgreementService{
		matches:    matches,
		presence:   presence,
		settlement: settlement,
		ratings:    ratings,
		notifier:   notifier,
		logger:     logger,
	}
}

// SubmitResult 제출 처리 결과
type SubmitResult struct {
	OK        bool `json:"ok"`
	Waiting   bool `json:"waiting"`
	Completed bool `json:"completed"`
}

// SubmitOutcome 참가자의 종료 제출 처리
// 첫 제출은 기록 후 대기, 두 번째 제출이 정산을 트리거한다.
func (s *AgreementService) SubmitOutcome(ctx context.Context, userID, roomToken string, outcome models.Outcome, statement string) (*SubmitResult, error) {
	if !models.ValidOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}
	if len([]rune(strings.TrimSpace(statement))) < minStatementLength {
		return nil, ErrInvalidStatement
	}

	match, err := s.matches.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	if match == nil || !match.IsActive() {
		return nil, ErrMatchNotFound
	}

	side, ok := match.SideOf(userID)
	if !ok {
		return nil, ErrNotParticipant
	}

	updated, err := s.matches.SaveSubmission(ctx, match.ID, side, outcome, statement)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}
	if updated == nil {
		// 저장 직전에 다른 경로(하트비트/몰수)가 매치를 종료함
		return &SubmitResult{OK: true, Completed: true}, nil
	}

	if !updated.BothSubmitted() {
		return &SubmitResult{OK: true, Waiting: true}, nil
	}

	// 양쪽 제출 완료: 정산
	deltaA, deltaB, validated, reason := s.ratings.Settle(*updated.UserAOutcome, *updated.UserBOutcome)

	won, err := s.settlement.FinalizeWithRatings(ctx, updated.ID, reason, validated,
		updated.UserA, deltaA, updated.UserB, deltaB)
	if err != nil {
		// 정산 실패 시 매치는 active로 남는다. 정산은 CAS로 보호되므로
		// 재시도해도 안전하다.
		return nil, fmt.Errorf("failed to settle match: %w", err)
	}

	if won {
		if err := s.presence.ClearRoom(ctx, roomToken); err != nil {
			s.logger.Warn("Failed to clear presence after settlement",
				zap.String("roomToken", roomToken),
				zap.Error(err))
		}

		s.notifier.MatchEnded(updated.UserA, roomToken, reason)
		s.notifier.MatchEnded(updated.UserB, roomToken, reason)

		s.logger.Info("Match settled",
			zap.String("matchId", updated.ID),
			zap.Bool("agreementValidated", validated),
			zap.String("reason", string(reason)))
	}

	// CAS에서 진 경우에도 매치는 종료된 상태이므로 completed로 응답
	return &SubmitResult{OK: true, Completed: true}, nil
}

// RetractResult 철회 처리 결과
type RetractResult struct {
	OK      bool `json:"ok"`
	Ignored bool `json:"ignored,omitempty"`
}

// RetractOutcome 본인 제출 철회
// 매치가 이미 종료되었으면 무시한다 (정산은 되돌릴 수 없음).
// 양쪽 제출이 모이면 즉시 정산되므로 active 확인으로 충분하다.
func (s *AgreementService) RetractOutcome(ctx context.Context, userID, roomToken string) (*RetractResult, error) {
	match, err := s.matches.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	if match == nil || !match.IsActive() {
		return &RetractResult{OK: true, Ignored: true}, nil
	}

	side, ok := match.SideOf(userID)
	if !ok {
		return nil, ErrNotParticipant
	}

	if err := s.matches.ClearSubmission(ctx, match.ID, side); err != nil {
		return nil, fmt.Errorf("failed to retract submission: %w", err)
	}

	s.logger.Debug("Submission retracted",
		zap.String("matchId", match.ID),
		zap.String("userId", userID))

	return &RetractResult{OK: true}, nil
}

// Forfeit 명시적 이탈 처리: 떠난 쪽에만 비율 차감 후 매치 종료
// 타임아웃/노쇼와 달리 사용자가 직접 선택한 이탈이므로 처벌이 따른다.
func (s *AgreementService) Forfeit(ctx context.Context, userID, roomToken string) error {
	match, err := s.matches.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return fmt.Errorf("failed to find match: %w", err)
	}
	if match == nil || !match.IsActive() {
		return nil // 이미 종료됨, 멱등
	}

	if _, ok := match.SideOf(userID); !ok {
		return ErrNotParticipant
	}

	won, err := s.settlement.ForfeitWithPenalty(ctx, match.ID, userID, s.ratings.ForfeitPenaltyRate())
	if err != nil {
		return fmt.Errorf("failed to forfeit match: %w", err)
	}

	if won {
		if err := s.presence.ClearRoom(ctx, roomToken); err != nil {
			s.logger.Warn("Failed to clear presence after forfeit",
				zap.String("roomToken", roomToken),
				zap.Error(err))
		}

		s.notifier.MatchEnded(match.Opponent(userID), roomToken, models.EndReasonForfeit)

		s.logger.Info("Match forfeited",
			zap.String("matchId", match.ID),
			zap.String("leaverId", userID))
	}

	return nil
}

// CancelBeforeStart 입장 동의 전 취소: 레이팅 영향 없이 매치 종료
func (s *AgreementService) CancelBeforeStart(ctx context.Context, userID, roomToken string) error {
	match, err := s.matches.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return fmt.Errorf("failed to find match: %w", err)
	}
	if match == nil || !match.IsActive() {
		return nil
	}

	if _, ok := match.SideOf(userID); !ok {
		return ErrNotParticipant
	}

	won, err := s.matches.CompleteIfActive(ctx, match.ID, models.EndReasonCancelled, false)
	if err != nil {
		return fmt.Errorf("failed to cancel match: %w", err)
	}

	if won {
		if err := s.presence.ClearRoom(ctx, roomToken); err != nil {
			s.logger.Warn("Failed to clear presence after cancel",
				zap.String("roomToken", roomToken),
				zap.Error(err))
		}

		s.notifier.MatchEnded(match.Opponent(userID), roomToken, models.EndReasonCancelled)

		s.logger.Info("Match cancelled before start",
			zap.String("matchId", match.ID),
			zap.String("userId", userID))
	}

	return nil
}
