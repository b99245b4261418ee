package handlers

import (
	"errors"
	"net/http"
	"time"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserWithCounts is a user enriched with per-status task counts
type UserWithCounts struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            models.UserRole `json:"role"`
	PendingTasks    int64           `json:"pendingTasks"`
	InProgressTasks int64           `json:"inProgressTasks"`
	CompletedTasks  int64           `json:"completedTasks"`
}

// GetAllUsers handles GET /api/users (admin only)
// Each user carries counts of their assigned tasks by status.
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Order("name asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	countFor := func(userID string, status models.TaskStatus) (int64, error) {
		var n int64
		err := database.GetDB().Model(&models.Task{}).
			Where("status = ? AND id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)", status, userID).
			Count(&n).Error
		return n, err
	}

	resp := make([]UserWithCounts, 0, len(users))
	for _, u := range users {
		row := UserWithCounts{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
		var err error
		if row.PendingTasks, err = countFor(u.ID, models.StatusPending); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
			return
		}
		if row.InProgressTasks, err = countFor(u.ID, models.StatusInProgress); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
			return
		}
		if row.CompletedTasks, err = countFor(u.ID, models.StatusCompleted); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
			return
		}
		resp = append(resp, row)
	}

	c.JSON(http.StatusOK, gin.H{"users": resp, "count": len(resp)})
}

// GetUserByID handles GET /api/users/:id
func GetUserByID(c *gin.Context) {
	var user models.User
	if err := database.GetDB().First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUserRoleRequest carries the target role for a user
type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

// UpdateUserRole handles PUT /api/users/:id/role (admin only)
func UpdateUserRole(c *gin.Context) {
	var req UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be 'admin' or 'member'"})
		return
	}

	var user models.User
	if err := database.GetDB().First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	if err := database.GetDB().Model(&user).Update("role", req.Role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	user.Role = req.Role
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully", "user": user})
}

// DeleteUser handles DELETE /api/users/:id (admin only)
// The user's task assignments, reviewer seats and project memberships
// are removed; their tasks, comments and time logs stay behind.
func DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	var user models.User
	if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		}
		return
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"task_assignees", "task_reviewers", "project_members"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", userID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully", "id": userID})
}

// ManagedUser is a user row on the admin management screen: open task
// counts plus the estimated hours that land in the current week.
type ManagedUser struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	TaskCounts struct {
		Pending    int `json:"pending"`
		InProgress int `json:"inProgress"`
	} `json:"taskCounts"`
	WeeklyEstimatedHours float64 `json:"weeklyEstimatedHours"`
}

// GetManageUsers handles GET /api/users/manage (admin only)
// Weekly hours sum the estimatedHours of a user's open tasks whose
// date range overlaps the current week (Sunday through Saturday);
// tasks without dates always count.
func GetManageUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Order("name asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	var openTasks []models.Task
	if err := database.GetDB().
		Preload("AssignedTo").
		Where("status <> ?", models.StatusCompleted).
		Find(&openTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	now := time.Now()
	weekStart := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)

	rows := make([]ManagedUser, 0, len(users))
	for _, u := range users {
		row := ManagedUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
		for _, task := range openTasks {
			if !task.IsAssignedTo(u.ID) {
				continue
			}
			switch task.Status {
			case models.StatusPending:
				row.TaskCounts.Pending++
			case models.StatusInProgress:
				row.TaskCounts.InProgress++
			}
			startsBeforeWeekEnd := task.StartDate == nil || task.StartDate.Before(weekEnd)
			endsAfterWeekStart := task.DueDate == nil || !task.DueDate.Before(weekStart)
			if startsBeforeWeekEnd && endsAfterWeekStart && task.EstimatedHours > 0 {
				row.WeeklyEstimatedHours += task.EstimatedHours
			}
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{"users": rows, "count": len(rows)})
}
