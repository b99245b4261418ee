package main

import (
	"log"
	"os"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}
	log.Printf("Server starting on port :%s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/auth/register")
	log.Println("  POST   /api/auth/login")
	log.Println("  GET    /api/tasks")
	log.Println("  POST   /api/tasks")
	log.Println("  PUT    /api/tasks/:taskId")
	log.Println("  PUT    /api/tasks/:taskId/todo")
	log.Println("  PUT    /api/tasks/:taskId/status")
	log.Println("  PUT    /api/tasks/:taskId/submit-review")
	log.Println("  PUT    /api/tasks/:taskId/process-review")
	log.Println("  PUT    /api/tasks/:taskId/final-approval")
	log.Println("  PUT    /api/tasks/:taskId/direct-status-update")
	log.Println("  POST   /api/projects")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
