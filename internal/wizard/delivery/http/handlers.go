package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/internal/wizard"
	"github.com/ppotepa/streamcraft-tts/pkg/logger"
	"github.com/ppotepa/streamcraft-tts/pkg/utils"
)

type wizardHandler struct {
	cfg      *config.Config
	wizardUC wizard.UseCase
	logger   logger.Logger
}

func NewWizardHandler(cfg *config.Config, wizardUC wizard.UseCase, log logger.Logger) wizard.Handler {
	return &wizardHandler{
		cfg:      cfg,
		wizardUC: wizardUC,
		logger:   log,
	}
}

func (h *wizardHandler) CheckVod() echo.HandlerFunc {
	type checkInput struct {
		VodURL string `json:"vod_url"`
	}
	return func(c echo.Context) error {
		input := &checkInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		meta, err := h.wizardUC.CheckVod(c.Request().Context(), input.VodURL)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, meta)
	}
}

func (h *wizardHandler) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		jobs, err := h.wizardUC.ListJobs(c.Request().Context(), pagination)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, jobs)
	}
}

func (h *wizardHandler) DeleteJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		if jobID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		if err := h.wizardUC.DeleteJob(c.Request().Context(), jobID); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Job deleted successfully"})
	}
}

func (h *wizardHandler) OpenJob() echo.HandlerFunc {
	type openInput struct {
		StartStep string `json:"start_step"`
	}
	return func(c echo.Context) error {
		jobID := c.Param("job_id")
		if jobID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		input := &openInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}

		var override *models.StepID
		if input.StartStep != "" {
			step := models.StepID(input.StartStep)
			if !step.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid step id"})
			}
			override = &step
		}
		state, err := h.wizardUC.OpenJob(c.Request().Context(), jobID, override)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) GetSession() echo.HandlerFunc {
	return func(c echo.Context) error {
		state, err := h.wizardUC.Session()
		if err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) StartStep() echo.HandlerFunc {
	return func(c echo.Context) error {
		step := models.StepID(c.Param("step_id"))
		if !step.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid step id"})
		}
		params := wizard.StepParams{}
		if err := c.Bind(&params); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		state, err := h.wizardUC.StartStep(c.Request().Context(), step, params)
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) CancelStep() echo.HandlerFunc {
	return func(c echo.Context) error {
		step := models.StepID(c.Param("step_id"))
		if !step.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid step id"})
		}
		if err := h.wizardUC.CancelStep(step); err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Step cancelled"})
	}
}

func (h *wizardHandler) GetProgress() echo.HandlerFunc {
	return func(c echo.Context) error {
		var since int64
		if raw := c.QueryParam("since"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid since param"})
			}
			since = parsed
		}
		return c.JSON(http.StatusOK, h.wizardUC.ProgressSince(since))
	}
}

func (h *wizardHandler) OpenReview() echo.HandlerFunc {
	return func(c echo.Context) error {
		state, err := h.wizardUC.OpenReview()
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) ReviewVote() echo.HandlerFunc {
	type voteInput struct {
		Vote string `json:"vote"`
	}
	return func(c echo.Context) error {
		input := &voteInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		var (
			state *wizard.ReviewState
			err   error
		)
		switch models.Vote(input.Vote) {
		case models.VoteAccept:
			state, err = h.wizardUC.ReviewAccept()
		case models.VoteReject:
			state, err = h.wizardUC.ReviewReject()
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid vote"})
		}
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) ReviewJump() echo.HandlerFunc {
	type jumpInput struct {
		Index int `json:"index"`
	}
	return func(c echo.Context) error {
		input := &jumpInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		state, err := h.wizardUC.ReviewJump(input.Index)
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) ReviewKey() echo.HandlerFunc {
	type keyInput struct {
		Key              string `json:"key"`
		TextInputFocused bool   `json:"text_input_focused"`
	}
	return func(c echo.Context) error {
		input := &keyInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		state, err := h.wizardUC.ReviewKey(input.Key, input.TextInputFocused)
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) ReviewAutopilot() echo.HandlerFunc {
	type autopilotInput struct {
		Enabled bool `json:"enabled"`
	}
	return func(c echo.Context) error {
		input := &autopilotInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		state, err := h.wizardUC.ReviewAutopilot(input.Enabled)
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, state)
	}
}

func (h *wizardHandler) ReviewTranscript() echo.HandlerFunc {
	type transcriptInput struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
	}
	return func(c echo.Context) error {
		input := &transcriptInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		applied := h.wizardUC.ApplyTranscript(input.Index, input.Text)
		return c.JSON(http.StatusOK, map[string]bool{"applied": applied})
	}
}

func (h *wizardHandler) CloseReview() echo.HandlerFunc {
	return func(c echo.Context) error {
		summary, err := h.wizardUC.CloseReview()
		if err != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, summary)
	}
}

func (h *wizardHandler) GetAvatar() echo.HandlerFunc {
	return func(c echo.Context) error {
		login := c.Param("login")
		if login == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid login"})
		}
		url, found := h.wizardUC.AvatarURL(c.Request().Context(), login)
		if !found {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Avatar not found"})
		}
		return c.JSON(http.StatusOK, map[string]string{"url": url})
	}
}

func (h *wizardHandler) ClearAvatarCache() echo.HandlerFunc {
	return func(c echo.Context) error {
		h.wizardUC.ClearAvatarCache()
		return c.JSON(http.StatusOK, map[string]string{"message": "Avatar cache cleared"})
	}
}

func (h *wizardHandler) GetArtifactURL() echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.QueryParam("path")
		if path == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Path param is required"})
		}
		url, err := h.wizardUC.ArtifactURL(c.Request().Context(), path)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"url": url})
	}
}
