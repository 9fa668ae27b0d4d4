package handler

import (
	"errors"
	"time"

	"jobmarket/internal/delivery/http/dto"
	"jobmarket/internal/delivery/http/middleware"
	"jobmarket/internal/domain/job"
	"jobmarket/internal/pkg/response"
	"jobmarket/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	uc usecase.JobSearchUsecase
}

func NewJobsHandler(uc usecase.JobSearchUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/fetch_jobs", h.HandleFetchJobs)
	r.Post("/", h.HandleCreateJob)
}

// HandleFetchJobs validates the raw query string, runs the fetch-and-merge
// pipeline and returns the filtered page. Validation failures never reach the
// upstream provider.
func (h *JobsHandler) HandleFetchJobs(c fiber.Ctx) error {
	raw := usecase.RawSearchParams{
		Query:      c.Query("query"),
		Location:   c.Query("location"),
		RemoteOnly: c.Query("remote_only"),
		MinSalary:  c.Query("min_salary"),
		DatePosted: c.Query("date_posted"),
		MaxPages:   c.Query("max_pages"),
		Page:       c.Query("page"),
		Limit:      c.Query("limit"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	q, verr := usecase.ParseSearchParams(raw)
	if verr != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, verr.Message, verr.Details, verr)
	}

	res, err := h.uc.FetchJobs(c.Context(), q)
	if err != nil {
		return mapJobSearchError(err)
	}

	out := make([]dto.JobResponse, 0, len(res.Jobs))
	for _, p := range res.Jobs {
		out = append(out, toJobResponse(p))
	}

	return c.Status(fiber.StatusOK).JSON(dto.FetchJobsResponse{
		Success: true,
		Message: "Job data fetching completed",
		Jobs:    out,
		Total:   res.Total,
		Pages:   res.Pages,
	})
}

func (h *JobsHandler) HandleCreateJob(c fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest,
			"request body must be valid JSON", err)
	}

	created, err := h.uc.CreateJob(c.Context(), usecase.CreateJobInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Salary:      req.Salary,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		ApplyLink:   req.ApplyLink,
		Description: req.Description,
		PostedAt:    req.PostedAt,
	})
	if err != nil {
		return mapJobSearchError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreateJobResponse{
		Success: true,
		Job:     toJobResponse(created),
	})
}

func mapJobSearchError(err error) error {
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		return middleware.NewAppError(fiber.StatusBadRequest, verr.Message, verr.Details, verr)
	}

	var uerr *usecase.UpstreamError
	if errors.As(err, &uerr) {
		return middleware.NewAppError(uerr.StatusCode, response.MessageUpstreamFailed, uerr.Details, err)
	}

	if errors.Is(err, usecase.ErrNetwork) {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageNetworkError, nil, err)
	}

	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}

func toJobResponse(p job.Posting) dto.JobResponse {
	return dto.JobResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		Salary:      p.SalaryDisplay(),
		SalaryMin:   p.SalaryMin,
		SalaryMax:   p.SalaryMax,
		ApplyLink:   p.ApplyLink,
		Description: p.Description,
		Remote:      p.Remote,
		PostedAt:    p.PostedAt.UTC().Format(time.RFC3339),
	}
}
