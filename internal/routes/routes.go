package routes

import (
	"project-tracker-api/internal/handlers"
	"project-tracker-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204) // This depends on the implementation of the frontend
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Tracker API is running",
		})
	})

	api := ginRouter.Group("/api")

	// Public routes (no authentication required)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/auth/profile", handlers.GetProfile)

		// Realtime notification stream
		protected.GET("/ws", handlers.WebSocketHandler)

		// Static task routes before parameterized ones
		tasks := protected.Group("/tasks")
		{
			tasks.GET("", handlers.GetTasks)
			tasks.GET("/dashboard-data", handlers.GetDashboardData)
			tasks.GET("/user-dashboard-data", handlers.GetUserDashboardData)
			tasks.GET("/user-board", handlers.GetUserBoardData)
			tasks.GET("/admin-board", middleware.AdminOnly(), handlers.GetAdminBoardData)
			tasks.GET("/calendar", handlers.GetTasksForCalendar)

			// Timer routes
			tasks.POST("/:taskId/timelogs/start", handlers.StartTimer)
			tasks.PUT("/:taskId/timelogs/:timeLogId/stop", handlers.StopTimer)
			tasks.GET("/:taskId/timelogs/active", handlers.GetActiveTimer)
			tasks.GET("/:taskId/timelogs", handlers.GetTaskTimeLogs)
		}

		// Review workflow routes (note: gin requires one param name per
		// position, so these share the :taskId segment with the timer
		// routes above)
		protected.PUT("/tasks/:taskId/submit-review", handlers.SubmitForReview)
		protected.PUT("/tasks/:taskId/process-review", handlers.ProcessReview)
		protected.PUT("/tasks/:taskId/final-approval", handlers.FinalApproveTask)
		protected.PUT("/tasks/:taskId/direct-status-update", handlers.DirectStatusUpdate)

		// Status and checklist
		protected.PUT("/tasks/:taskId/status", handlers.UpdateTaskStatus)
		protected.PUT("/tasks/:taskId/todo", handlers.UpdateTaskChecklist)

		// Remarks and comments
		protected.POST("/tasks/:taskId/remarks", middleware.AdminOnly(), handlers.AddRemarkToTask)
		protected.POST("/tasks/:taskId/comments", handlers.AddCommentToTask)

		// Task CRUD
		protected.POST("/tasks", middleware.AdminOnly(), handlers.CreateTask)
		protected.GET("/tasks/:taskId", handlers.GetTaskByID)
		protected.PUT("/tasks/:taskId", handlers.UpdateTask)
		protected.DELETE("/tasks/:taskId", middleware.AdminOnly(), handlers.DeleteTask)

		// Projects
		protected.POST("/projects", middleware.AdminOnly(), handlers.CreateProject)
		protected.GET("/projects", handlers.GetProjects)
		protected.GET("/projects/:id", handlers.GetProjectByID)
		protected.PUT("/projects/:id", middleware.AdminOnly(), handlers.UpdateProject)
		protected.GET("/projects/:id/gantt", handlers.GetProjectGanttData)

		// Users
		protected.GET("/users", middleware.AdminOnly(), handlers.GetAllUsers)
		protected.GET("/users/manage", middleware.AdminOnly(), handlers.GetManageUsers)
		protected.GET("/users/:id", handlers.GetUserByID)
		protected.PUT("/users/:id/role", middleware.AdminOnly(), handlers.UpdateUserRole)
		protected.DELETE("/users/:id", middleware.AdminOnly(), handlers.DeleteUser)

		// Notifications
		protected.GET("/notifications", handlers.GetNotifications)
		protected.PUT("/notifications/:id/read", handlers.MarkNotificationRead)
	}

	return ginRouter
}
