package service

import (
	"testing"

	"github.com/MoesLuis/debate-mvp/internal/config"
	"github.com/MoesLuis/debate-mvp/internal/models"
)

func testRatingService() *RatingService {
	return NewRatingService(&config.Config{
		SRGain:         5,
		SRLoss:         2,
		CRGain:         10,
		CRLoss:         5,
		CRDisagreeLoss: 8,
		ForfeitPenalty: 0.05,
	})
}

func TestRatingService_Settle(t *testing.T) {
	ratings := testRatingService()

	tests := []struct {
		name          string
		outcomeA      models.Outcome
		outcomeB      models.Outcome
		wantDelta     models.RatingDelta
		wantValidated bool
		wantReason    models.EndReason
		description   string
	}{
		{
			name:          "Both agreement",
			outcomeA:      models.OutcomeAgreement,
			outcomeB:      models.OutcomeAgreement,
			wantDelta:     models.RatingDelta{SR: 5, CR: 10},
			wantValidated: true,
			wantReason:    models.EndReasonAgreement,
			description:   "Validated agreement rewards both sides",
		},
		{
			name:          "Agreement vs no_agreement",
			outcomeA:      models.OutcomeAgreement,
			outcomeB:      models.OutcomeNoAgreement,
			wantDelta:     models.RatingDelta{SR: -2, CR: -8},
			wantValidated: false,
			wantReason:    models.EndReasonDisagreement,
			description:   "Mismatched outcomes take the larger collaboration hit",
		},
		{
			name:          "Partial vs no_agreement",
			outcomeA:      models.OutcomePartial,
			outcomeB:      models.OutcomeNoAgreement,
			wantDelta:     models.RatingDelta{SR: -2, CR: -8},
			wantValidated: false,
			wantReason:    models.EndReasonDisagreement,
			description:   "Any mismatch counts as disagreement",
		},
		{
			name:          "Both no_agreement",
			outcomeA:      models.OutcomeNoAgreement,
			outcomeB:      models.OutcomeNoAgreement,
			wantDelta:     models.RatingDelta{SR: -2, CR: -5},
			wantValidated: false,
			wantReason:    models.EndReasonDisagreement,
			description:   "Matching non-agreement outcomes take the smaller hit",
		},
		{
			name:          "Both partial",
			outcomeA:      models.OutcomePartial,
			outcomeB:      models.OutcomePartial,
			wantDelta:     models.RatingDelta{SR: -2, CR: -5},
			wantValidated: false,
			wantReason:    models.EndReasonDisagreement,
			description:   "Partial consensus is still not a validated agreement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltaA, deltaB, validated, reason := ratings.Settle(tt.outcomeA, tt.outcomeB)

			if deltaA != tt.wantDelta {
				t.Errorf("Settle(%s, %s) deltaA = %+v, want %+v (%s)",
					tt.outcomeA, tt.outcomeB, deltaA, tt.wantDelta, tt.description)
			}
			if deltaA != deltaB {
				t.Errorf("Settle deltas must be symmetric, got A=%+v B=%+v", deltaA, deltaB)
			}
			if validated != tt.wantValidated {
				t.Errorf("Settle validated = %v, want %v", validated, tt.wantValidated)
			}
			if reason != tt.wantReason {
				t.Errorf("Settle reason = %s, want %s", reason, tt.wantReason)
			}
		})
	}
}

func TestRatingService_Settle_OrderIndependent(t *testing.T) {
	ratings := testRatingService()

	outcomes := []models.Outcome{
		models.OutcomeAgreement,
		models.OutcomePartial,
		models.OutcomeNoAgreement,
	}

	for _, a := range outcomes {
		for _, b := range outcomes {
			deltaAB, _, validatedAB, reasonAB := ratings.Settle(a, b)
			deltaBA, _, validatedBA, reasonBA := ratings.Settle(b, a)

			if deltaAB != deltaBA || validatedAB != validatedBA || reasonAB != reasonBA {
				t.Errorf("Settle(%s, %s) and Settle(%s, %s) disagree", a, b, b, a)
			}
		}
	}
}

func TestPenaltyFor(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		rate   float64
		want   int
	}{
		{name: "Default rating", rating: 1000, rate: 0.05, want: 50},
		{name: "Rounds up", rating: 1001, rate: 0.05, want: 51},
		{name: "Low rating still loses something", rating: 10, rate: 0.05, want: 1},
		{name: "Zero rating", rating: 0, rate: 0.05, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PenaltyFor(tt.rating, tt.rate); got != tt.want {
				t.Errorf("PenaltyFor(%d, %v) = %d, want %d", tt.rating, tt.rate, got, tt.want)
			}
		})
	}
}
