package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

func TestEvaluateLiveness(t *testing.T) {
	timeout := 30 * time.Second
	joinGrace := 45 * time.Second
	now := time.Now()

	newMatch := func(age time.Duration) *models.Match {
		return &models.Match{
			ID:        "match-1",
			UserA:     "alice",
			UserB:     "bob",
			Status:    models.MatchStatusActive,
			CreatedAt: now.Add(-age),
		}
	}

	tests := []struct {
		name         string
		match        *models.Match
		seen         map[string]time.Time
		wantReason   models.EndReason
		wantTerminal bool
	}{
		{
			name:         "Both fresh",
			match:        newMatch(time.Minute),
			seen:         map[string]time.Time{"alice": now, "bob": now.Add(-5 * time.Second)},
			wantTerminal: false,
		},
		{
			name:         "Opponent missing within join grace",
			match:        newMatch(10 * time.Second),
			seen:         map[string]time.Time{"alice": now},
			wantTerminal: false,
		},
		{
			name:         "Opponent missing after join grace",
			match:        newMatch(time.Minute),
			seen:         map[string]time.Time{"alice": now},
			wantReason:   models.EndReasonNoShow,
			wantTerminal: true,
		},
		{
			name:         "Neither joined after grace",
			match:        newMatch(time.Minute),
			seen:         map[string]time.Time{},
			wantReason:   models.EndReasonNoShow,
			wantTerminal: true,
		},
		{
			name:         "Opponent stale past timeout",
			match:        newMatch(5 * time.Minute),
			seen:         map[string]time.Time{"alice": now, "bob": now.Add(-time.Minute)},
			wantReason:   models.EndReasonTimeout,
			wantTerminal: true,
		},
		{
			name:         "Opponent just under timeout",
			match:        newMatch(5 * time.Minute),
			seen:         map[string]time.Time{"alice": now, "bob": now.Add(-29 * time.Second)},
			wantTerminal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, terminal := evaluateLiveness(now, tt.match, tt.seen, timeout, joinGrace)

			if terminal != tt.wantTerminal {
				t.Errorf("evaluateLiveness terminal = %v, want %v", terminal, tt.wantTerminal)
			}
			if terminal && reason != tt.wantReason {
				t.Errorf("evaluateLiveness reason = %s, want %s", reason, tt.wantReason)
			}
		})
	}
}

func TestHeartbeatService_Heartbeat(t *testing.T) {
	ctx := context.Background()

	setup := func() (*HeartbeatService, *fakeMatchStore, *fakePresenceStore, *recordingNotifier) {
		matches := newFakeMatchStore()
		presence := newFakePresenceStore()
		notifier := &recordingNotifier{}
		svc := NewHeartbeatService(matches, presence, notifier, 30*time.Second, 45*time.Second, zap.NewNop())
		return svc, matches, presence, notifier
	}

	t.Run("기록 후 양쪽 생존이면 매치 유지", func(t *testing.T) {
		svc, matches, presence, _ := setup()
		m := matches.addMatch("alice", "bob", "topic-1", "deb-aaa111")
		presence.setLastSeen("deb-aaa111", "bob", time.Now())

		result, err := svc.Heartbeat(ctx, "alice", "deb-aaa111")
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.False(t, result.Ended)
		assert.True(t, matches.get(m.ID).IsActive())
	})

	t.Run("상대가 timeout을 넘기면 매치 종료", func(t *testing.T) {
		svc, matches, presence, notifier := setup()
		m := matches.addMatch("alice", "bob", "topic-1", "deb-bbb222")
		presence.setLastSeen("deb-bbb222", "bob", time.Now().Add(-time.Minute))

		result, err := svc.Heartbeat(ctx, "alice", "deb-bbb222")
		require.NoError(t, err)
		assert.True(t, result.Ended)
		assert.Equal(t, models.EndReasonTimeout, result.Reason)

		ended := matches.get(m.ID)
		assert.Equal(t, models.MatchStatusCompleted, ended.Status)
		require.NotNil(t, ended.EndReason)
		assert.Equal(t, models.EndReasonTimeout, *ended.EndReason)

		// 양쪽 모두 종료 알림을 받는다
		assert.Len(t, notifier.eventsFor("alice"), 1)
		assert.Len(t, notifier.eventsFor("bob"), 1)
	})

	t.Run("grace 기간 내에는 미입장 상대를 기다린다", func(t *testing.T) {
		svc, matches, _, _ := setup()
		m := matches.addMatch("alice", "bob", "topic-1", "deb-ccc333")

		result, err := svc.Heartbeat(ctx, "alice", "deb-ccc333")
		require.NoError(t, err)
		assert.False(t, result.Ended)
		assert.True(t, matches.get(m.ID).IsActive())
	})

	t.Run("grace 이후에도 미입장이면 no_show 종료", func(t *testing.T) {
		svc, matches, _, _ := setup()
		m := matches.addMatch("alice", "bob", "topic-1", "deb-ddd444")
		matches.mu.Lock()
		matches.matches[m.ID].CreatedAt = time.Now().Add(-time.Minute)
		matches.mu.Unlock()

		result, err := svc.Heartbeat(ctx, "alice", "deb-ddd444")
		require.NoError(t, err)
		assert.True(t, result.Ended)
		assert.Equal(t, models.EndReasonNoShow, result.Reason)
	})

	t.Run("종료된 매치에 대한 하트비트는 무시", func(t *testing.T) {
		svc, matches, _, notifier := setup()
		m := matches.addMatch("alice", "bob", "topic-1", "deb-eee555")
		_, err := matches.CompleteIfActive(ctx, m.ID, models.EndReasonCancelled, false)
		require.NoError(t, err)

		result, err := svc.Heartbeat(ctx, "alice", "deb-eee555")
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.False(t, result.Ended)
		assert.Empty(t, notifier.events)
	})

	t.Run("참가자가 아니면 거부", func(t *testing.T) {
		svc, matches, _, _ := setup()
		matches.addMatch("alice", "bob", "topic-1", "deb-fff666")

		_, err := svc.Heartbeat(ctx, "mallory", "deb-fff666")
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("존재하지 않는 룸 토큰은 no-op", func(t *testing.T) {
		svc, _, _, _ := setup()

		result, err := svc.Heartbeat(ctx, "alice", "deb-zzz999")
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.False(t, result.Ended)
	})
}
