package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MoesLuis/debate-mvp/internal/service"
)

type UserHandler struct {
	userService  *service.UserService
	topicService *service.TopicService
}

func NewUserHandler(userService *service.UserService, topicService *service.TopicService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		topicService: topicService,
	}
}

// GetMe 내 프로필 조회 (레이팅 포함)
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetString("userId")

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	topicIDs, err := h.topicService.GetUserTopics(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"topics":  topicIDs,
	})
}

// ListTopics 전체 주제 목록 조회
func (h *UserHandler) ListTopics(c *gin.Context) {
	topics, err := h.topicService.ListTopics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

type UpdateTopicsRequest struct {
	TopicIDs []string `json:"topicIds" binding:"required"`
}

// UpdateMyTopics 팔로우 주제 전체 교체
func (h *UserHandler) UpdateMyTopics(c *gin.Context) {
	userID := c.GetString("userId")

	var req UpdateTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.topicService.SetUserTopics(c.Request.Context(), userID, req.TopicIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": req.TopicIDs})
}
