package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler mounted under the API prefix.
type Handlers struct {
	Students  *StudentHandler
	Settings  *SettingsHandler
	Analytics *AnalyticsHandler
	Insights  *InsightHandler
	Exports   *ExportHandler
	Metrics   *MetricsHandler
}

// Register mounts the API routes on group.
func Register(group gin.IRouter, h Handlers) {
	group.GET("/dataset", h.Settings.Dataset)
	group.DELETE("/dataset", h.Settings.ClearAll)
	group.GET("/settings", h.Settings.Get)
	group.PATCH("/settings", h.Settings.Update)

	group.GET("/subjects", h.Students.Subjects)
	students := group.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.DELETE("/:id", h.Students.Delete)
	students.GET("/:id/scores", h.Students.ListScores)
	students.POST("/:id/scores", h.Students.AddScore)

	stats := group.Group("/stats")
	stats.GET("/dashboard", h.Analytics.Dashboard)
	stats.GET("/ranking", h.Analytics.Ranking)
	stats.GET("/students/:id", h.Analytics.Student)

	ai := group.Group("/ai")
	ai.POST("/students/:id/analysis", h.Insights.AnalyzeStudent)
	ai.POST("/study-plan", h.Insights.StudyPlan)

	exports := group.Group("/exports")
	exports.GET("/spreadsheet", h.Exports.Spreadsheet)
	exports.GET("/scores.csv", h.Exports.ScoresCSV)
	exports.GET("/slides", h.Exports.Slides)
	exports.POST("/document", h.Exports.Document)
	exports.POST("/jobs", h.Exports.CreateJob)
	exports.GET("/jobs/:id", h.Exports.JobStatus)
	exports.GET("/download/:token", h.Exports.Download)

	if h.Metrics != nil {
		group.GET("/metrics/summary", h.Metrics.Summary)
	}
}
