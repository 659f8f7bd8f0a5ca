package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

// MatchmakingService 매칭 요청 처리
// 순서는 고정: 진행 중 매치 확인 → 주제가 바뀐 매치 정리 → 원자적 claim → 큐 등록
type MatchmakingService struct {
	matches  MatchStore
	queue    QueueStore
	topics   TopicStore
	presence PresenceStore
	notifier Notifier
	logger   *zap.Logger
}

func NewMatchmakingService(
	matches MatchStore,
	queue QueueStore,
	topics TopicStore,
	presence PresenceStore,
	notifier Notifier,
	logger *zap.Logger,
) *MatchmakingService {
	return &MatchmakingService{
		matches:  matches,
		queue:    queue,
		topics:   topics,
		presence: presence,
		notifier: notifier,
		logger:   logger,
	}
}

// MatchResult 매칭 요청 결과
type MatchResult struct {
	MatchFound bool   `json:"matchFound"`
	RoomToken  string `json:"roomToken,omitempty"`
	Rejoined   bool   `json:"rejoined,omitempty"`
}

// RequestMatch 매칭 요청
// topicID가 nil이면 사용자가 팔로우한 전체 주제가 후보가 된다.
func (s *MatchmakingService) RequestMatch(ctx context.Context, userID string, topicID *string) (*MatchResult, error) {
	// 후보 주제 결정
	var candidates []string
	if topicID != nil && *topicID != "" {
		candidates = []string{*topicID}
	} else {
		ids, err := s.topics.ListUserTopicIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user topics: %w", err)
		}
		candidates = ids
	}

	if len(candidates) == 0 {
		return nil, ErrNoTopicsSelected
	}

	// 1. 진행 중인 매치가 있으면 재입장 (멱등)
	active, err := s.matches.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active match: %w", err)
	}

	if active != nil {
		if containsTopic(candidates, active.TopicID) {
			return &MatchResult{MatchFound: true, RoomToken: active.RoomToken, Rejoined: true}, nil
		}

		// 2. 주제가 더 이상 맞지 않는 매치는 정리
		// 관심사가 바뀐 사용자를 오래된 매치가 붙잡아 두지 않도록 한다.
		won, err := s.matches.CompleteIfActive(ctx, active.ID, models.EndReasonCancelled, false)
		if err != nil {
			return nil, fmt.Errorf("failed to close stale match: %w", err)
		}
		if won {
			if err := s.presence.ClearRoom(ctx, active.RoomToken); err != nil {
				s.logger.Warn("Failed to clear presence for stale match",
					zap.String("roomToken", active.RoomToken),
					zap.Error(err))
			}
			s.notifier.MatchEnded(active.Opponent(userID), active.RoomToken, models.EndReasonCancelled)
			s.logger.Info("Closed stale match on topic change",
				zap.String("userId", userID),
				zap.String("matchId", active.ID))
		}
	}

	// 3. 대기열에서 호환 상대 claim (단일 원자적 연산)
	roomToken, err := newRoomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room token: %w", err)
	}

	match, created, err := s.queue.PairWithWaiting(ctx, userID, roomToken, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to pair with waiting user: %w", err)
	}

	if match != nil && !created {
		// 1번 확인과 claim 사이에 다른 요청이 이 사용자를 먼저 매칭한 경우:
		// 트랜잭션 내부 재확인이 그 매치를 돌려주므로 재입장으로 처리한다
		s.logger.Info("Concurrent pairing detected, rejoining existing match",
			zap.String("userId", userID),
			zap.String("roomToken", match.RoomToken))
		return &MatchResult{MatchFound: true, RoomToken: match.RoomToken, Rejoined: true}, nil
	}

	if match != nil {
		// 대기하던 상대에게 매치 성사 알림
		s.notifier.MatchFound(match.Opponent(userID), match.RoomToken, match.TopicID)

		s.logger.Info("Match created",
			zap.String("matchId", match.ID),
			zap.String("roomToken", match.RoomToken),
			zap.String("userA", match.UserA),
			zap.String("userB", match.UserB),
			zap.String("topicId", match.TopicID))

		return &MatchResult{MatchFound: true, RoomToken: match.RoomToken}, nil
	}

	// 4. 상대 없음: 큐에 등록 (upsert, 사용자당 항목 하나)
	if err := s.queue.Upsert(ctx, userID, candidates[0]); err != nil {
		return nil, fmt.Errorf("failed to enqueue user: %w", err)
	}

	s.logger.Debug("User enqueued for matchmaking",
		zap.String("userId", userID),
		zap.String("topicId", candidates[0]))

	return &MatchResult{MatchFound: false}, nil
}

// LeaveQueue 대기열에서 나가기
func (s *MatchmakingService) LeaveQueue(ctx context.Context, userID string) error {
	if err := s.queue.Remove(ctx, userID); err != nil {
		return fmt.Errorf("failed to leave queue: %w", err)
	}
	return nil
}

// GetMatch 룸 토큰으로 매치 조회 (참가자만)
func (s *MatchmakingService) GetMatch(ctx context.Context, userID, roomToken string) (*models.Match, error) {
	match, err := s.matches.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if _, ok := match.SideOf(userID); !ok {
		return nil, ErrNotParticipant
	}
	return match, nil
}

func containsTopic(topicIDs []string, topicID string) bool {
	for _, id := range topicIDs {
		if id == topicID {
			return true
		}
	}
	return false
}

const roomTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newRoomToken 공유 가능한 짧은 룸 토큰 생성 (예: deb-x7Ab3q)
func newRoomToken() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = roomTokenAlphabet[int(b)%len(roomTokenAlphabet)]
	}
	return "deb-" + string(buf), nil
}
