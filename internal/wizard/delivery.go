package wizard

import "github.com/labstack/echo/v4"

type Handler interface {
	CheckVod() echo.HandlerFunc
	ListJobs() echo.HandlerFunc
	DeleteJob() echo.HandlerFunc

	OpenJob() echo.HandlerFunc
	GetSession() echo.HandlerFunc
	StartStep() echo.HandlerFunc
	CancelStep() echo.HandlerFunc
	GetProgress() echo.HandlerFunc

	OpenReview() echo.HandlerFunc
	ReviewVote() echo.HandlerFunc
	ReviewJump() echo.HandlerFunc
	ReviewKey() echo.HandlerFunc
	ReviewAutopilot() echo.HandlerFunc
	ReviewTranscript() echo.HandlerFunc
	CloseReview() echo.HandlerFunc

	GetAvatar() echo.HandlerFunc
	ClearAvatarCache() echo.HandlerFunc
	GetArtifactURL() echo.HandlerFunc
}
