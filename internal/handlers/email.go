// internal/handlers/email.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/giftcraft/storefront/internal/services"
	"github.com/giftcraft/storefront/internal/utils"
)

type EmailHandler struct {
	notificationService *services.NotificationService
}

func NewEmailHandler(notificationService *services.NotificationService) *EmailHandler {
	return &EmailHandler{notificationService: notificationService}
}

// POST /api/email/comment-notification
func (h *EmailHandler) CommentNotification(c *gin.Context) {
	var req services.CommentNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid notification payload", err.Error())
		return
	}

	// Delivery failure never fails the caller's comment flow: the comment
	// already exists in the CMS, so a lost email is reported in-band.
	if err := h.notificationService.SendCommentNotification(c.Request.Context(), &req); err != nil {
		logrus.WithError(err).Error("Comment notification email failed")
		c.JSON(http.StatusOK, utils.APIResponse{
			Success: false,
			Error: &utils.APIError{
				Code:    "EMAIL_FAILED",
				Message: "Notification email could not be sent",
			},
		})
		return
	}

	utils.SuccessResponse(c, gin.H{"sent": true})
}
