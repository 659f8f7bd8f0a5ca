package models

import "time"

type MatchStatus string

const (
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
)

// EndReason 매치 종료 사유 (nullable 컬럼에서 추론하지 않고 명시적으로 기록)
type EndReason string

const (
	EndReasonAgreement    EndReason = "agreement"
	EndReasonDisagreement EndReason = "disagreement"
	EndReasonForfeit      EndReason = "forfeit"
	EndReasonTimeout      EndReason = "timeout"
	EndReasonNoShow       EndReason = "no_show"
	EndReasonCancelled    EndReason = "cancelled"
)

// Outcome 참가자가 제출하는 토론 결과
type Outcome string

const (
	OutcomeAgreement   Outcome = "agreement"
	OutcomePartial     Outcome = "partial"
	OutcomeNoAgreement Outcome = "no_agreement"
)

// ValidOutcome 제출 가능한 outcome인지 확인
func ValidOutcome(o Outcome) bool {
	switch o {
	case OutcomeAgreement, OutcomePartial, OutcomeNoAgreement:
		return true
	}
	return false
}

// Side 매치 내 참가자 위치
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Submission 참가자 한 쪽의 제출 내용 (nil이면 아직 미제출)
type Submission struct {
	Outcome   Outcome `json:"outcome"`
	Statement string  `json:"statement"`
}

type Match struct {
	ID        string      `json:"id" db:"id"`
	RoomToken string      `json:"roomToken" db:"room_token"`
	UserA     string      `json:"userA" db:"user_a"`
	UserB     string      `json:"userB" db:"user_b"`
	TopicID   string      `json:"topicId" db:"topic_id"`
	Status    MatchStatus `json:"status" db:"status"`
	EndReason *EndReason  `json:"endReason,omitempty" db:"end_reason"`

	UserAOutcome   *Outcome `json:"userAOutcome,omitempty" db:"user_a_outcome"`
	UserAStatement *string  `json:"-" db:"user_a_statement"`
	UserBOutcome   *Outcome `json:"userBOutcome,omitempty" db:"user_b_outcome"`
	UserBStatement *string  `json:"-" db:"user_b_statement"`

	AgreementValidated *bool `json:"agreementValidated,omitempty" db:"agreement_validated"`

	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	EndedAt   *time.Time `json:"endedAt,omitempty" db:"ended_at"`
}

// IsActive 매치가 아직 진행 중인지 확인
func (m *Match) IsActive() bool {
	return m.Status == MatchStatusActive
}

// SideOf 사용자의 참가자 위치 반환 (참가자가 아니면 false)
func (m *Match) SideOf(userID string) (Side, bool) {
	switch userID {
	case m.UserA:
		return SideA, true
	case m.UserB:
		return SideB, true
	}
	return "", false
}

// Opponent 상대 참가자 ID 반환
func (m *Match) Opponent(userID string) string {
	if userID == m.UserA {
		return m.UserB
	}
	return m.UserA
}

// SubmissionOf 해당 쪽의 제출 내용 반환 (미제출이면 nil)
func (m *Match) SubmissionOf(side Side) *Submission {
	var outcome *Outcome
	var statement *string
	if side == SideA {
		outcome, statement = m.UserAOutcome, m.UserAStatement
	} else {
		outcome, statement = m.UserBOutcome, m.UserBStatement
	}
	if outcome == nil || statement == nil {
		return nil
	}
	return &Submission{Outcome: *outcome, Statement: *statement}
}

// BothSubmitted 양쪽 모두 outcome과 statement를 제출했는지 확인
func (m *Match) BothSubmitted() bool {
	return m.SubmissionOf(SideA) != nil && m.SubmissionOf(SideB) != nil
}
