package http

import (
	"github.com/labstack/echo/v4"
	"github.com/ppotepa/streamcraft-tts/internal/middleware"
	"github.com/ppotepa/streamcraft-tts/internal/wizard"
)

func MapWizardRoutes(wizardGroup *echo.Group, h wizard.Handler, mw *middleware.MiddlewareManager) {
	wizardGroup.Use(mw.AuthSessionMiddleware)
	wizardGroup.POST("/check-vod", h.CheckVod())
	wizardGroup.GET("/jobs", h.ListJobs())
	wizardGroup.DELETE("/jobs/:job_id", h.DeleteJob())
	wizardGroup.POST("/jobs/:job_id/open", h.OpenJob())
	wizardGroup.GET("/session", h.GetSession())
	wizardGroup.POST("/steps/:step_id/start", h.StartStep())
	wizardGroup.POST("/steps/:step_id/cancel", h.CancelStep())
	wizardGroup.GET("/progress", h.GetProgress())
	wizardGroup.POST("/review/open", h.OpenReview())
	wizardGroup.POST("/review/vote", h.ReviewVote())
	wizardGroup.POST("/review/jump", h.ReviewJump())
	wizardGroup.POST("/review/key", h.ReviewKey())
	wizardGroup.POST("/review/autopilot", h.ReviewAutopilot())
	wizardGroup.POST("/review/transcript", h.ReviewTranscript())
	wizardGroup.POST("/review/close", h.CloseReview())
	wizardGroup.GET("/avatar/:login", h.GetAvatar())
	wizardGroup.DELETE("/avatar-cache", h.ClearAvatarCache())
	wizardGroup.GET("/artifact-url", h.GetArtifactURL())
}
