package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MoesLuis/debate-mvp/internal/models"
)

// 인메모리 저장소 구현. 저장소 계층의 CAS/claim 의미를 그대로 따라,
// 서비스 로직을 DB 없이 검증한다.

type fakeMatchStore struct {
	mu      sync.Mutex
	nextID  int
	matches map[string]*models.Match // matchID 기준

	// beforeSave 설정 시 SaveSubmission 진입 직전에 호출 (교차 타이밍 재현용)
	beforeSave func()
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: make(map[string]*models.Match)}
}

func (f *fakeMatchStore) addMatch(userA, userB, topicID, roomToken string) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addMatchLocked(userA, userB, topicID, roomToken)
}

func (f *fakeMatchStore) addMatchLocked(userA, userB, topicID, roomToken string) *models.Match {
	f.nextID++
	m := &models.Match{
		ID:        fmt.Sprintf("match-%d", f.nextID),
		RoomToken: roomToken,
		UserA:     userA,
		UserB:     userB,
		TopicID:   topicID,
		Status:    models.MatchStatusActive,
		CreatedAt: time.Now(),
	}
	f.matches[m.ID] = m
	return m
}

func (f *fakeMatchStore) get(matchID string) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMatch(f.matches[matchID])
}

func (f *fakeMatchStore) FindByRoomToken(ctx context.Context, roomToken string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.RoomToken == roomToken {
			return copyMatch(m), nil
		}
	}
	return nil, nil
}

func (f *fakeMatchStore) FindActiveByUser(ctx context.Context, userID string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.Status == models.MatchStatusActive && (m.UserA == userID || m.UserB == userID) {
			return copyMatch(m), nil
		}
	}
	return nil, nil
}

func (f *fakeMatchStore) CompleteIfActive(ctx context.Context, matchID string, reason models.EndReason, validated bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completeLocked(matchID, reason, validated), nil
}

func (f *fakeMatchStore) completeLocked(matchID string, reason models.EndReason, validated bool) bool {
	m, ok := f.matches[matchID]
	if !ok || m.Status != models.MatchStatusActive {
		return false
	}
	now := time.Now()
	m.Status = models.MatchStatusCompleted
	m.EndReason = &reason
	m.AgreementValidated = &validated
	if m.EndedAt == nil {
		m.EndedAt = &now
	}
	return true
}

func (f *fakeMatchStore) SaveSubmission(ctx context.Context, matchID string, side models.Side, outcome models.Outcome, statement string) (*models.Match, error) {
	if f.beforeSave != nil {
		f.beforeSave()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok || m.Status != models.MatchStatusActive {
		return nil, nil
	}
	if side == models.SideA {
		m.UserAOutcome, m.UserAStatement = &outcome, &statement
	} else {
		m.UserBOutcome, m.UserBStatement = &outcome, &statement
	}
	return copyMatch(m), nil
}

func (f *fakeMatchStore) ClearSubmission(ctx context.Context, matchID string, side models.Side) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok || m.Status != models.MatchStatusActive {
		return nil
	}
	if side == models.SideA {
		m.UserAOutcome, m.UserAStatement = nil, nil
	} else {
		m.UserBOutcome, m.UserBStatement = nil, nil
	}
	return nil
}

func copyMatch(m *models.Match) *models.Match {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

type queueEntry struct {
	userID     string
	topicID    string
	enqueuedAt time.Time
}

type fakeQueueStore struct {
	mu      sync.Mutex
	entries []queueEntry
	matches *fakeMatchStore // claim 성공 시 매치를 함께 생성

	// beforePair 설정 시 PairWithWaiting 진입 직전에 호출. 경쟁 요청이
	// 먼저 커밋한 상황을 흉내 낼 때 사용한다.
	beforePair func()
}

func newFakeQueueStore(matches *fakeMatchStore) *fakeQueueStore {
	return &fakeQueueStore{matches: matches}
}

func (f *fakeQueueStore) Upsert(ctx context.Context, userID, topicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].userID == userID {
			f.entries[i].topicID = topicID
			return nil
		}
	}
	f.entries = append(f.entries, queueEntry{userID: userID, topicID: topicID, enqueuedAt: time.Now()})
	return nil
}

func (f *fakeQueueStore) Remove(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].userID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeQueueStore) contains(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.userID == userID {
			return true
		}
	}
	return false
}

func (f *fakeQueueStore) PairWithWaiting(ctx context.Context, requesterID, roomToken string, topicIDs []string) (*models.Match, bool, error) {
	if f.beforePair != nil {
		f.beforePair()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 저장소 트랜잭션과 같은 순서: 본인 항목 삭제 → 진행 중 매치 재확인 → claim
	for i := range f.entries {
		if f.entries[i].userID == requesterID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}

	if existing, _ := f.matches.FindActiveByUser(ctx, requesterID); existing != nil {
		return existing, false, nil
	}

	best := -1
	for i, e := range f.entries {
		if e.userID == requesterID {
			continue
		}
		for _, topicID := range topicIDs {
			if e.topicID == topicID {
				if best == -1 || e.enqueuedAt.Before(f.entries[best].enqueuedAt) {
					best = i
				}
				break
			}
		}
	}

	if best == -1 {
		return nil, false, nil
	}

	waiting := f.entries[best]
	f.entries = append(f.entries[:best], f.entries[best+1:]...)

	m := f.matches.addMatch(waiting.userID, requesterID, waiting.topicID, roomToken)
	return copyMatch(m), true, nil
}

type fakeTopicStore struct {
	topics map[string][]string
}

func (f *fakeTopicStore) ListUserTopicIDs(ctx context.Context, userID string) ([]string, error) {
	return f.topics[userID], nil
}

type fakePresenceStore struct {
	mu    sync.Mutex
	rooms map[string]map[string]time.Time
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{rooms: make(map[string]map[string]time.Time)}
}

func (f *fakePresenceStore) Touch(ctx context.Context, roomToken, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rooms[roomToken] == nil {
		f.rooms[roomToken] = make(map[string]time.Time)
	}
	f.rooms[roomToken][userID] = time.Now()
	return nil
}

func (f *fakePresenceStore) setLastSeen(roomToken, userID string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rooms[roomToken] == nil {
		f.rooms[roomToken] = make(map[string]time.Time)
	}
	f.rooms[roomToken][userID] = at
}

func (f *fakePresenceStore) LastSeen(ctx context.Context, roomToken string) (map[string]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]time.Time, len(f.rooms[roomToken]))
	for k, v := range f.rooms[roomToken] {
		out[k] = v
	}
	return out, nil
}

func (f *fakePresenceStore) ClearRoom(ctx context.Context, roomToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, roomToken)
	return nil
}

type fakeSettlementStore struct {
	mu        sync.Mutex
	matches   *fakeMatchStore
	deltas    map[string]models.RatingDelta // 누적 반영된 변화량
	penalties map[string]float64            // 몰수 차감 비율

	// beforeFinalize 설정 시 FinalizeWithRatings 진입 직전에 호출
	beforeFinalize func()
}

func newFakeSettlementStore(matches *fakeMatchStore) *fakeSettlementStore {
	return &fakeSettlementStore{
		matches:   matches,
		deltas:    make(map[string]models.RatingDelta),
		penalties: make(map[string]float64),
	}
}

func (f *fakeSettlementStore) FinalizeWithRatings(ctx context.Context, matchID string, reason models.EndReason, validated bool,
	userA string, deltaA models.RatingDelta, userB string, deltaB models.RatingDelta) (bool, error) {
	if f.beforeFinalize != nil {
		f.beforeFinalize()
	}

	f.matches.mu.Lock()
	won := f.matches.completeLocked(matchID, reason, validated)
	f.matches.mu.Unlock()
	if !won {
		return false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.deltas[userA]
	a.SR += deltaA.SR
	a.CR += deltaA.CR
	f.deltas[userA] = a
	b := f.deltas[userB]
	b.SR += deltaB.SR
	b.CR += deltaB.CR
	f.deltas[userB] = b
	return true, nil
}

func (f *fakeSettlementStore) ForfeitWithPenalty(ctx context.Context, matchID, leaverID string, rate float64) (bool, error) {
	f.matches.mu.Lock()
	won := f.matches.completeLocked(matchID, models.EndReasonForfeit, false)
	f.matches.mu.Unlock()
	if !won {
		return false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.penalties[leaverID] = rate
	return true, nil
}

type notifierEvent struct {
	kind      string // "found" 또는 "ended"
	userID    string
	roomToken string
	topicID   string
	reason    models.EndReason
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

func (n *recordingNotifier) MatchFound(userID, roomToken, topicID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifierEvent{kind: "found", userID: userID, roomToken: roomToken, topicID: topicID})
}

func (n *recordingNotifier) MatchEnded(userID, roomToken string, reason models.EndReason) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifierEvent{kind: "ended", userID: userID, roomToken: roomToken, reason: reason})
}

func (n *recordingNotifier) eventsFor(userID string) []notifierEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifierEvent
	for _, e := range n.events {
		if e.userID == userID {
			out = append(out, e)
		}
	}
	return out
}
