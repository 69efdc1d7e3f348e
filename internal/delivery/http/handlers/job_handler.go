package handlers

import (
	"media-stamp/internal/domain/dto"
	"media-stamp/internal/usecases"
	fe "media-stamp/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobs usecases.JobService
	log  *zap.Logger
}

func NewJobHandler(jobs usecases.JobService, log *zap.Logger) *JobHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &JobHandler{jobs: jobs, log: log}
}

// CreateJob
//
// @Summary      Queue a pipeline job
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateJobRequest true "Job type and payload"
// @Success      202   {object}  dto.JobStatus
// @Router       /jobs [post]
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("invalid request body"))
	}

	status, err := h.jobs.Submit(c.UserContext(), req)
	if err != nil {
		return fe.HandleError(c, h.log, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(status)
}

// GetJob
//
// @Summary      Get a job
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  dto.JobStatus
// @Router       /jobs/{id} [get]
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	status, err := h.jobs.Get(c.Params("id"))
	if err != nil {
		return fe.HandleError(c, h.log, err)
	}
	return c.JSON(status)
}

// ListJobs
//
// @Summary      List jobs
// @Tags         Jobs
// @Produce      json
// @Success      200  {array}  dto.JobStatus
// @Router       /jobs [get]
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobs.List()
	if err != nil {
		return fe.HandleError(c, h.log, err)
	}
	return c.JSON(jobs)
}
