package distributed

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupRedisRelay(t *testing.T) (*redis.Client, *EventRelay) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	return client, NewEventRelay(client, zap.NewNop())
}

func TestEventRelay_PublishAndStop(t *testing.T) {
	client, relay := setupRedisRelay(t)
	defer client.Close()

	received := make(chan MatchEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- relay.Start(context.Background(), func(event MatchEvent) {
			select {
			case received <- event:
			default:
			}
		})
	}()

	// 구독이 붙을 때까지 잠시 대기
	time.Sleep(100 * time.Millisecond)

	relay.MatchFound("alice", "deb-abc123", "topic-1")

	select {
	case event := <-received:
		assert.Equal(t, "match_found", event.Type)
		assert.Equal(t, "alice", event.UserID)
		assert.Equal(t, "deb-abc123", event.RoomToken)
		assert.Equal(t, "topic-1", event.TopicID)
	case <-time.After(2 * time.Second):
		t.Fatal("match_found event not received")
	}

	// Stop이 구독 루프를 끝내야 한다
	relay.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
