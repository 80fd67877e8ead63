package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/namviet/fieldops/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Task      *apiHandler.TaskHandler
	Check     *apiHandler.CheckHandler
	Account   *apiHandler.AccountHandler
	Activity  *apiHandler.ActivityHandler
	Directory *apiHandler.DirectoryHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Task lifecycle
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.POST("/api/v1/tasks/{id}/schedule", authMiddleware(handlers.Task.ScheduleTask))
	r.POST("/api/v1/tasks/{id}/hold", authMiddleware(handlers.Task.HoldTask))
	r.POST("/api/v1/tasks/{id}/resume", authMiddleware(handlers.Task.ResumeTask))

	// Location-verified transitions
	r.POST("/api/v1/tasks/{id}/checkin", authMiddleware(handlers.Check.CheckIn))
	r.POST("/api/v1/tasks/{id}/checkout", authMiddleware(handlers.Check.CheckOut))

	// Account
	r.DELETE("/api/v1/account/me", authMiddleware(handlers.Account.DeleteMe))

	// Audit trail
	r.GET("/api/v1/activities", authMiddleware(handlers.Activity.GetActivities))

	// Directory
	r.GET("/api/v1/locations", authMiddleware(handlers.Directory.GetLocations))
	r.POST("/api/v1/locations", authMiddleware(handlers.Directory.CreateLocation))
	r.GET("/api/v1/customers", authMiddleware(handlers.Directory.GetCustomers))
	r.POST("/api/v1/customers", authMiddleware(handlers.Directory.CreateCustomer))

	return r
}
