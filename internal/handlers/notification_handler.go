package handlers

import (
	"errors"
	"net/http"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetNotifications handles GET /api/notifications
// Returns the caller's notifications, newest first.
func GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")

	var notifications []models.Notification
	if err := database.GetDB().
		Where("recipient_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	var unread int64
	if err := database.GetDB().Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unreadCount": unread})
}

// MarkNotificationRead handles PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	userID := c.GetString("user_id")

	var notification models.Notification
	err := database.GetDB().First(&notification, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification"})
		}
		return
	}

	if notification.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: this notification is not yours"})
		return
	}

	if err := database.GetDB().Model(&notification).Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	notification.Read = true
	c.JSON(http.StatusOK, notification)
}
