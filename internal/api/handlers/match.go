package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MoesLuis/debate-mvp/internal/models"
	"github.com/MoesLuis/debate-mvp/internal/service"
)

type MatchHandler struct {
	matchmakingService *service.MatchmakingService
	heartbeatService   *service.HeartbeatService
	agreementService   *service.AgreementService
}

func NewMatchHandler(
	matchmakingService *service.MatchmakingService,
	heartbeatService *service.HeartbeatService,
	agreementService *service.AgreementService,
) *MatchHandler {
	return &MatchHandler{
		matchmakingService: matchmakingService,
		heartbeatService:   heartbeatService,
		agreementService:   agreementService,
	}
}

// GetMatch 룸 토큰으로 매치 조회 (참가자만)
func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID := c.GetString("userId")
	roomToken := c.Param("roomToken")

	match, err := h.matchmakingService.GetMatch(c.Request.Context(), userID, roomToken)
	if err != nil {
		respondMatchError(c, err, "Failed to get match")
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// Heartbeat 생존 신호 기록 및 상대 생존 확인
func (h *MatchHandler) Heartbeat(c *gin.Context) {
	userID := c.GetString("userId")
	roomToken := c.Param("roomToken")

	result, err := h.heartbeatService.Heartbeat(c.Request.Context(), userID, roomToken)
	if err != nil {
		respondMatchError(c, err, "Failed to process heartbeat")
		return
	}

	c.JSON(http.StatusOK, result)
}

type EndRequest struct {
	Outcome   string `json:"outcome" binding:"required"`
	Statement string `json:"statement" binding:"required"`
}

// End 종료 제출 (양쪽 제출이 모이면 정산)
func (h *MatchHandler) End(c *gin.Context) {
	userID := c.GetString("userId")
	roomToken := c.Param("roomToken")

	var req EndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.agreementService.SubmitOutcome(
		c.Request.Context(), userID, roomToken, models.Outcome(req.Outcome), req.Statement)
	if err != nil {
		respondMatchError(c, err, "Failed to submit outcome")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RetractEnd 본인 종료 제출 철회
func (h *MatchHandler) RetractEnd(c *gin.Context) {
	userID := c.GetString("userId")
	roomToken := c.Param("roomToken")

	result, err := h.agreementService.RetractOutcome(c.Request.Context(), userID, roomToken)
	if err != nil {
		respondMatchError(c, err, "Failed to retract outcome")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Forfeit 명시적 이탈 (떠난 쪽에 페널티)
func (h *MatchHandler) Forfeit(c *gin.Context) {
	userID := c.GetString("userId")
	roomToken := c.Param("roomToken")

	if err := h.agreementService.Forfeit(c.Request.Context(), userID, roomToken); err != nil {
		respondMatchError(c, err, "Failed to forfeit match")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Cancel 입장 동의 전 취소 (레이팅 영향 없음)
func (h *MatchHandler) Cancel(c *gin.Context) {
	userID := c.GetString("userId")
	roomToken := c.Param("roomToken")

	if err := h.agreementService.CancelBeforeStart(c.Request.Context(), userID, roomToken); err != nil {
		respondMatchError(c, err, "Failed to cancel match")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondMatchError 매치 관련 서비스 에러를 HTTP 상태 코드로 변환
func respondMatchError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
	case errors.Is(err, service.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this match"})
	case errors.Is(err, service.ErrInvalidOutcome):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid outcome value"})
	case errors.Is(err, service.ErrInvalidStatement):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statement too short"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
