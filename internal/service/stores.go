package service

import (
	"context"
	"time"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

// 저장소 계약. 구현은 internal/repository가 제공하며, 교차 요청 조정은
// 전부 저장소 수준의 조건부 업데이트(CAS)와 원자적 claim에 맡긴다.

// MatchStore 매치 레코드 조회/갱신
type MatchStore interface {
	FindByRoomToken(ctx context.Context, roomToken string) (*models.Match, error)
	FindActiveByUser(ctx context.Context, userID string) (*models.Match, error)
	// CompleteIfActive status가 active일 때만 종료. 승자 여부 반환.
	CompleteIfActive(ctx context.Context, matchID string, reason models.EndReason, validated bool) (bool, error)
	// SaveSubmission outcome/statement 쌍 저장 후 갱신된 매치 반환.
	// 이미 종료된 매치면 nil 반환.
	SaveSubmission(ctx context.Context, matchID string, side models.Side, outcome models.Outcome, statement string) (*models.Match, error)
	ClearSubmission(ctx context.Context, matchID string, side models.Side) error
}

// QueueStore 매칭 대기열
type QueueStore interface {
	Upsert(ctx context.Context, userID, topicID string) error
	Remove(ctx context.Context, userID string) error
	// PairWithWaiting 호환 대기자를 원자적으로 claim하고 매치 생성.
	// 요청자 큐 항목 삭제와 진행 중 매치 재확인이 같은 트랜잭션에서
	// 수행되며, 재확인에서 기존 매치가 나오면 (match, false)를 반환한다.
	// 대기자도 기존 매치도 없으면 (nil, false, nil).
	PairWithWaiting(ctx context.Context, requesterID, roomToken string, topicIDs []string) (*models.Match, bool, error)
}

// TopicStore 사용자 관심 주제
type TopicStore interface {
	ListUserTopicIDs(ctx context.Context, userID string) ([]string, error)
}

// PresenceStore 참가자별 last_seen
type PresenceStore interface {
	Touch(ctx context.Context, roomToken, userID string) error
	LastSeen(ctx context.Context, roomToken string) (map[string]time.Time, error)
	ClearRoom(ctx context.Context, roomToken string) error
}

// SettlementStore 매치 종료와 레이팅 반영 (한 트랜잭션)
type SettlementStore interface {
	FinalizeWithRatings(ctx context.Context, matchID string, reason models.EndReason, validated bool,
		userA string, deltaA models.RatingDelta, userB string, deltaB models.RatingDelta) (bool, error)
	ForfeitWithPenalty(ctx context.Context, matchID, leaverID string, rate float64) (bool, error)
}

// Notifier 매치 생성/종료 푸시 알림 (best-effort)
type Notifier interface {
	MatchFound(userID, roomToken, topicID string)
	MatchEnded(userID, roomToken string, reason models.EndReason)
}

// NopNotifier 알림 채널이 없는 구성용
type NopNotifier struct{}

func (NopNotifier) MatchFound(userID, roomToken, topicID string)              {}
func (NopNotifier) MatchEnded(userID, roomToken string, r models.EndReason)   {}
