package job

import (
	"fmt"
	"net/http"
	"strconv"

	"job_tracker/internal/auth"
	"job_tracker/internal/common"
	"job_tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

// JobController serves /api/:user_id/jobs. The owner always comes from the
// verified token; the path id is checked by middleware.RequireOwner.
type JobController struct {
	service JobServiceInterface
}

func NewJobController(service JobServiceInterface) *JobController {
	return &JobController{
		service: service,
	}
}

func (jc *JobController) CreateJob(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var req JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, common.Validation("Invalid request body"))
		return
	}

	job, err := jc.service.CreateJob(c.Request.Context(), ownerID, req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, fmt.Sprintf("Inserted job with id %d", job.ID), job)
}

func (jc *JobController) ListJobs(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	limitParam, hasLimit := c.GetQuery("limit")
	filter, err := ParseListFilter(c.Query("search"), limitParam)
	if err != nil {
		utils.Error(c, err)
		return
	}

	jobs, err := jc.service.ListJobs(c.Request.Context(), ownerID, filter)
	if err != nil {
		utils.Error(c, err)
		return
	}

	var pagination *utils.Pagination
	if hasLimit {
		pagination = &utils.Pagination{Limit: filter.Limit}
	}

	utils.SuccessWithPagination(c, fmt.Sprintf("Retrieved %d jobs", len(jobs)), jobs, pagination)
}

func (jc *JobController) GetJob(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	job, err := jc.service.GetJob(c.Request.Context(), ownerID, jobID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Retrieved job with id %d", jobID), job)
}

func (jc *JobController) UpdateJob(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	var req JobUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, common.Validation("Invalid request body"))
		return
	}

	job, err := jc.service.UpdateJob(c.Request.Context(), ownerID, jobID, req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Updated job with id %d", jobID), job)
}

func (jc *JobController) DeleteJob(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}

	if err := jc.service.DeleteJob(c.Request.Context(), ownerID, jobID); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Deleted job with id %d", jobID), nil)
}

func ownerFromContext(c *gin.Context) (int, bool) {
	ownerID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		utils.Abort(c, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return ownerID, true
}

func jobIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, common.Validation("Invalid job ID"))
		return 0, false
	}
	return id, true
}
