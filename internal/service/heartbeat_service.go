package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

// HeartbeatService 참가자 생존 신호 처리 및 상대 이탈 감지
// 타임아웃/노쇼 종료는 레이팅에 영향을 주지 않는다 (일시적 네트워크
// 장애를 몰수처럼 처벌하지 않기 위한 의도적 선택).
type HeartbeatService struct {
	matches  MatchStore
	presence PresenceStore
	notifier Notifier
	logger   *zap.Logger

	timeout   time.Duration
	joinGrace time.Duration
}

func NewHeartbeatService(
	matches MatchStore,
	presence PresenceStore,
	notifier Notifier,
	timeout, joinGrace time.Duration,
	logger *zap.Logger,
) *HeartbeatService {
	return &HeartbeatService{
		matches:   matches,
		presence:  presence,
		notifier:  notifier,
		timeout:   timeout,
		joinGrace: joinGrace,
		logger:    logger,
	}
}

// HeartbeatResult 하트비트 처리 결과
type HeartbeatResult struct {
	OK     bool             `json:"ok"`
	Ended  bool             `json:"ended,omitempty"`
	Reason models.EndReason `json:"reason,omitempty"`
}

// Heartbeat 참가자 생존 신호 기록 및 양쪽 생존 평가
func (s *HeartbeatService) Heartbeat(ctx context.Context, userID, roomToken string) (*HeartbeatResult, error) {
	match, err := s.matches.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}

	// 없거나 이미 종료된 매치면 무시 (늦게 도착한 하트비트, 멱등)
	if match == nil || !match.IsActive() {
		return &HeartbeatResult{OK: true}, nil
	}

	if _, ok := match.SideOf(userID); !ok {
		return nil, ErrNotParticipant
	}

	if err := s.presence.Touch(ctx, roomToken, userID); err != nil {
		return nil, fmt.Errorf("failed to record presence: %w", err)
	}

	seen, err := s.presence.LastSeen(ctx, roomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to load presence: %w", err)
	}

	reason, terminal := evaluateLiveness(time.Now(), match, seen, s.timeout, s.joinGrace)
	if !terminal {
		return &HeartbeatResult{OK: true}, nil
	}

	// 종료는 CAS로 수행: 동시에 제출/몰수가 종료시켰다면 여기는 no-op
	won, err := s.matches.CompleteIfActive(ctx, match.ID, reason, false)
	if err != nil {
		return nil, fmt.Errorf("failed to complete match: %w", err)
	}

	if won {
		if err := s.presence.ClearRoom(ctx, roomToken); err != nil {
			s.logger.Warn("Failed to clear presence after completion",
				zap.String("roomToken", roomToken),
				zap.Error(err))
		}

		s.notifier.MatchEnded(match.UserA, roomToken, reason)
		s.notifier.MatchEnded(match.UserB, roomToken, reason)

		s.logger.Info("Match force-completed by heartbeat monitor",
			zap.String("matchId", match.ID),
			zap.String("reason", string(reason)))
	}

	return &HeartbeatResult{OK: true, Ended: true, Reason: reason}, nil
}

// evaluateLiveness 양쪽 참가자의 생존 상태 평가
// - 한쪽이라도 presence가 없고 생성 후 joinGrace 이내: 아직 입장 중, 조치 없음
//   (grace 없이는 먼저 들어온 쪽의 첫 하트비트가 아직 입장하지 않은
//   상대를 즉시 죽은 것으로 판정해 버린다)
// - grace가 지나도 presence가 없으면: no_show
// - 둘 다 presence가 있고 한쪽이 timeout을 넘겼으면: timeout
func evaluateLiveness(now time.Time, match *models.Match, seen map[string]time.Time, timeout, joinGrace time.Duration) (models.EndReason, bool) {
	seenA, okA := seen[match.UserA]
	seenB, okB := seen[match.UserB]

	if !okA || !okB {
		if now.Sub(match.CreatedAt) < joinGrace {
			return "", false
		}
		return models.EndReasonNoShow, true
	}

	if now.Sub(seenA) > timeout || now.Sub(seenB) > timeout {
		return models.EndReasonTimeout, true
	}

	return "", false
}
