package service

import (
	"math"

	"github.com/MoesLuis/debate-mvp/internal/config"
	"github.com/MoesLuis/debate-mvp/internal/models"
)

// RatingService 매치 결과에 따른 레이팅 변화 계산 (순수 함수)
// 고정 증감 휴리스틱이며 일반적인 ELO 시스템이 아니다.
type RatingService struct {
	srGain         int
	srLoss         int
	crGain         int
	crLoss         int
	crDisagreeLoss int
	forfeitPenalty float64
}

// NewRatingService 설정의 정책 상수로 레이팅 서비스 생성
func NewRatingService(cfg *config.Config) *RatingService {
	return &RatingService{
		srGain:         cfg.SRGain,
		srLoss:         cfg.SRLoss,
		crGain:         cfg.CRGain,
		crLoss:         cfg.CRLoss,
		crDisagreeLoss: cfg.CRDisagreeLoss,
		forfeitPenalty: cfg.ForfeitPenalty,
	}
}

// Settle 양쪽 outcome으로 레이팅 변화량과 종료 사유 계산
// - 둘 다 agreement: 양쪽 상승, agreement_validated = true
// - outcome 불일치: 양쪽 하락 (disagreement 차감)
// - 같은 비합의 outcome (partial/partial, no_agreement/no_agreement): 양쪽 하락
// 변화는 항상 대칭이다.
func (s *RatingService) Settle(outcomeA, outcomeB models.Outcome) (deltaA, deltaB models.RatingDelta, validated bool, reason models.EndReason) {
	validated = outcomeA == models.OutcomeAgreement && outcomeB == models.OutcomeAgreement

	switch {
	case validated:
		deltaA = models.RatingDelta{SR: s.srGain, CR: s.crGain}
		reason = models.EndReasonAgreement
	case outcomeA != outcomeB:
		deltaA = models.RatingDelta{SR: -s.srLoss, CR: -s.crDisagreeLoss}
		reason = models.EndReasonDisagreement
	default:
		// 둘 다 partial 또는 둘 다 no_agreement
		deltaA = models.RatingDelta{SR: -s.srLoss, CR: -s.crLoss}
		reason = models.EndReasonDisagreement
	}

	deltaB = deltaA
	return deltaA, deltaB, validated, reason
}

// ForfeitPenaltyRate 몰수 시 차감 비율
func (s *RatingService) ForfeitPenaltyRate() float64 {
	return s.forfeitPenalty
}

// PenaltyFor 몰수 차감량 계산 (현재 레이팅의 비율, 올림)
// 실제 차감은 저장소의 원자적 UPDATE가 같은 식으로 수행한다.
func PenaltyFor(rating int, rate float64) int {
	return int(math.Ceil(float64(rating) * rate))
}
