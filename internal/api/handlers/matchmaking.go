package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MoesLuis/debate-mvp/internal/service"
)

type MatchmakingHandler struct {
	matchmakingService *service.MatchmakingService
}

func NewMatchmakingHandler(matchmakingService *service.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{matchmakingService: matchmakingService}
}

type FindPartnerRequest struct {
	TopicID *string `json:"topicId"`
}

// FindPartner 매칭 요청
// 진행 중 매치가 있으면 재입장, 호환 대기자가 있으면 즉시 매치,
// 없으면 대기열 등록.
func (h *MatchmakingHandler) FindPartner(c *gin.Context) {
	userID := c.GetString("userId")

	// 바디 없는 요청은 주제 미지정과 같다 (topicId는 선택 사항)
	var req FindPartnerRequest
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.matchmakingService.RequestMatch(c.Request.Context(), userID, req.TopicID)
	if err != nil {
		if errors.Is(err, service.ErrNoTopicsSelected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No topics selected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request match"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// LeaveQueue 대기열에서 나가기 (멱등)
func (h *MatchmakingHandler) LeaveQueue(c *gin.Context) {
	userID := c.GetString("userId")

	if err := h.matchmakingService.LeaveQueue(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
