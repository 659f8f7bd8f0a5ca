package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

// MatchEvent 매치 생명주기 이벤트
type MatchEvent struct {
	Type      string    `json:"type"` // "match_found", "match_ended"
	UserID    string    `json:"user_id"`
	RoomToken string    `json:"room_token"`
	TopicID   string    `json:"topic_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventRelay Redis Pub/Sub 기반 매치 이벤트 중계
// 어느 인스턴스가 매치를 성사/종료시켰든 이벤트를 전 인스턴스로 퍼뜨려,
// 각 인스턴스가 자기에게 연결된 사용자의 WebSocket으로 전달하게 한다.
type EventRelay struct {
	client     *redis.Client
	logger     *zap.Logger
	instanceID string // 인스턴스 고유 ID

	eventChannel    string
	stopChan        chan struct{}
	subscriptionCtx context.Context
	cancelSub       context.CancelFunc
}

// NewEventRelay 이벤트 중계자 생성
func NewEventRelay(client *redis.Client, logger *zap.Logger) *EventRelay {
	return &EventRelay{
		client:       client,
		logger:       logger,
		instanceID:   uuid.New().String(),
		eventChannel: "match:events",
		stopChan:     make(chan struct{}),
	}
}

// Start 이벤트 수신 시작
// 수신한 이벤트마다 handler를 호출한다. 모든 인스턴스가 같은 채널을
// 구독하며, 연결이 없는 사용자에 대한 전달은 각자의 Hub가 무시한다.
func (r *EventRelay) Start(ctx context.Context, handler func(event MatchEvent)) error {
	r.subscriptionCtx, r.cancelSub = context.WithCancel(ctx)

	pubsub := r.client.Subscribe(r.subscriptionCtx, r.eventChannel)
	defer pubsub.Close()

	// 구독 확인
	_, err := pubsub.Receive(r.subscriptionCtx)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	r.logger.Info("Match event relay started",
		zap.String("instance_id", r.instanceID),
		zap.String("channel", r.eventChannel))

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			if msg == nil {
				continue
			}

			var event MatchEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error("Failed to unmarshal event", zap.Error(err))
				continue
			}

			r.logger.Debug("Received match event",
				zap.String("type", event.Type),
				zap.String("user_id", event.UserID),
				zap.String("room_token", event.RoomToken))

			handler(event)

		case <-r.stopChan:
			r.logger.Info("Match event relay stopped")
			return nil

		case <-r.subscriptionCtx.Done():
			// Stop은 stopChan을 닫은 뒤 컨텍스트를 취소하므로, 어느 쪽이
			// 먼저 선택되든 정상 종료로 처리한다
			select {
			case <-r.stopChan:
				r.logger.Info("Match event relay stopped")
				return nil
			default:
			}
			return r.subscriptionCtx.Err()
		}
	}
}

// Stop 이벤트 수신 중지
func (r *EventRelay) Stop() {
	close(r.stopChan)
	if r.cancelSub != nil {
		r.cancelSub()
	}
}

// publish 이벤트 발행 (best-effort, 실패는 로그만 남김)
func (r *EventRelay) publish(event MatchEvent) {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Publish(ctx, r.eventChannel, data).Err(); err != nil {
		r.logger.Error("Failed to publish event",
			zap.String("type", event.Type),
			zap.Error(err))
		return
	}

	r.logger.Debug("Published match event",
		zap.String("type", event.Type),
		zap.String("user_id", event.UserID))
}

// MatchFound 매치 성사 이벤트 발행
func (r *EventRelay) MatchFound(userID, roomToken, topicID string) {
	r.publish(MatchEvent{
		Type:      "match_found",
		UserID:    userID,
		RoomToken: roomToken,
		TopicID:   topicID,
	})
}

// MatchEnded 매치 종료 이벤트 발행
func (r *EventRelay) MatchEnded(userID, roomToken string, reason models.EndReason) {
	r.publish(MatchEvent{
		Type:      "match_ended",
		UserID:    userID,
		RoomToken: roomToken,
		Reason:    string(reason),
	})
}
