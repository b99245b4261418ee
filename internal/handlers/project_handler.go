package handlers

import (
	"errors"
	"net/http"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProjectRequest represents the payload for creating a project
type CreateProjectRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// CreateProject handles POST /api/projects (admin only)
func CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	members, err := usersByIDs(req.Members)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "members contains an unknown user"})
		return
	}

	project := models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     c.GetString("user_id"),
		Members:     members,
	}
	if err := database.GetDB().Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProjectRequest represents the payload for updating a project
type UpdateProjectRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Members     *[]string `json:"members"`
}

// UpdateProject handles PUT /api/projects/:id (admin only)
// A members list replaces the set outright; the automatic union with
// task assignees still applies on the next task write.
func UpdateProject(c *gin.Context) {
	var project models.Project
	if err := database.GetDB().Preload("Members").First(&project, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil && *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
		return
	}

	var members []models.User
	if req.Members != nil {
		var err error
		members, err = usersByIDs(*req.Members)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "members contains an unknown user"})
			return
		}
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(&project).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Members != nil {
			return tx.Model(&project).Association("Members").Replace(members)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	var updated models.Project
	if err := database.GetDB().Preload("Members").First(&updated, "id = ?", project.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully", "project": updated})
}

// GetProjects handles GET /api/projects
func GetProjects(c *gin.Context) {
	var projects []models.Project
	if err := database.GetDB().Preload("Members").Order("name asc").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProjectByID handles GET /api/projects/:id
func GetProjectByID(c *gin.Context) {
	var project models.Project
	err := database.GetDB().Preload("Members").First(&project, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetProjectGanttData handles GET /api/projects/:id/gantt
// Tasks with both dates become chart bars; dependency edges become
// links, in the data/links shape the Gantt widget consumes.
func GetProjectGanttData(c *gin.Context) {
	projectID := c.Param("id")

	var tasks []models.Task
	if err := database.GetDB().
		Preload("Dependencies").
		Where("project_id = ? AND start_date IS NOT NULL AND due_date IS NOT NULL", projectID).
		Order("start_date asc").
		Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Gantt data"})
		return
	}

	const ganttLayout = "2006-01-02 15:04"

	data := make([]gin.H, 0, len(tasks))
	links := make([]gin.H, 0)
	for _, t := range tasks {
		data = append(data, gin.H{
			"id":         t.ID,
			"text":       t.Title,
			"start_date": t.StartDate.Format(ganttLayout),
			"end_date":   t.DueDate.Format(ganttLayout),
			"progress":   float64(t.Progress) / 100,
		})
		for _, dep := range t.Dependencies {
			links = append(links, gin.H{
				"id":     uuid.NewString(),
				"source": dep.ID,
				"target": t.ID,
				"type":   "0",
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "links": links})
}
