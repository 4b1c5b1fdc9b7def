package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job_tracker/internal/auth"
	"job_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockJobService is a mock implementation of JobServiceInterface
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) CreateJob(ctx context.Context, ownerID int, input JobInput) (*Job, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockJobService) ListJobs(ctx context.Context, ownerID int, filter ListFilter) ([]*Job, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Job), args.Error(1)
}

func (m *MockJobService) GetJob(ctx context.Context, ownerID, jobID int) (*Job, error) {
	args := m.Called(ctx, ownerID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockJobService) UpdateJob(ctx context.Context, ownerID, jobID int, input JobUpdate) (*Job, error) {
	args := m.Called(ctx, ownerID, jobID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Job), args.Error(1)
}

func (m *MockJobService) DeleteJob(ctx context.Context, ownerID, jobID int) error {
	args := m.Called(ctx, ownerID, jobID)
	return args.Error(0)
}

// setupTestRouter registers the job routes behind a fake auth middleware
// that authenticates authenticatedUserID.
func setupTestRouter(service JobServiceInterface, authenticatedUserID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	controller := NewJobController(service)
	jobs := router.Group("/api/:user_id/jobs", func(c *gin.Context) {
		if authenticatedUserID > 0 {
			c.Set(auth.UserIDKey, authenticatedUserID)
		}
		c.Next()
	})
	jobs.POST("", controller.CreateJob)
	jobs.GET("", controller.ListJobs)
	jobs.GET("/:id", controller.GetJob)
	jobs.PUT("/:id", controller.UpdateJob)
	jobs.DELETE("/:id", controller.DeleteJob)

	return router
}

func perform(router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func TestJobController_CreateJob(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	input := JobInput{Title: "Engineer", Company: "Acme", Location: "Remote"}
	mockService.On("CreateJob", mock.Anything, 1, input).
		Return(&Job{ID: 11, UserID: 1, Title: "Engineer", Company: "Acme", Location: "Remote", PostedAt: time.Now()}, nil)

	w, response := perform(router, http.MethodPost, "/api/1/jobs",
		`{"title":"Engineer","company":"Acme","location":"Remote"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Inserted job with id 11", response["message"])
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["user_id"])
	assert.Nil(t, data["updated_at"])
	mockService.AssertExpectations(t)
}

func TestJobController_CreateJob_MissingTitle(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	w, response := perform(router, http.MethodPost, "/api/1/jobs", `{"company":"Acme"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", response["status"])
	mockService.AssertNotCalled(t, "CreateJob")
}

func TestJobController_ListJobs(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		filter     ListFilter
		pagination interface{}
	}{
		{"no params", "", ListFilter{}, nil},
		{"search", "?search=eng", ListFilter{Search: "eng"}, nil},
		{"limit", "?limit=2", ListFilter{Limit: 2}, map[string]interface{}{"limit": float64(2)}},
		{"search and limit", "?search=eng&limit=2", ListFilter{Search: "eng", Limit: 2}, map[string]interface{}{"limit": float64(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockJobService)
			router := setupTestRouter(mockService, 1)

			mockService.On("ListJobs", mock.Anything, 1, tt.filter).
				Return([]*Job{{ID: 2, UserID: 1}, {ID: 1, UserID: 1}}, nil)

			w, response := perform(router, http.MethodGet, "/api/1/jobs"+tt.query, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Retrieved 2 jobs", response["message"])
			assert.Equal(t, tt.pagination, response["pagination"])
			mockService.AssertExpectations(t)
		})
	}
}

func TestJobController_ListJobs_InvalidLimit(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	w, response := perform(router, http.MethodGet, "/api/1/jobs?limit=-3", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Limit must be a non-negative integer", response["message"])
	mockService.AssertNotCalled(t, "ListJobs")
}

func TestJobController_OwnerComesFromToken(t *testing.T) {
	mockService := new(MockJobService)
	// Authenticated as 2; the path says 1. Ownership middleware is not
	// mounted here, so the controller must still scope to the token.
	router := setupTestRouter(mockService, 2)

	mockService.On("GetJob", mock.Anything, 2, 5).Return(nil, common.NotFound("Job not found"))

	w, response := perform(router, http.MethodGet, "/api/1/jobs/5", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Job not found", response["message"])
	mockService.AssertExpectations(t)
}

func TestJobController_Unauthenticated(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 0)

	w, _ := perform(router, http.MethodGet, "/api/1/jobs", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "ListJobs")
}

func TestJobController_GetJob(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	mockService.On("GetJob", mock.Anything, 1, 5).Return(&Job{ID: 5, UserID: 1, Title: "SRE"}, nil)

	w, response := perform(router, http.MethodGet, "/api/1/jobs/5", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Retrieved job with id 5", response["message"])

	w, response = perform(router, http.MethodGet, "/api/1/jobs/five", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid job ID", response["message"])
}

func TestJobController_UpdateJob(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mockService.On("UpdateJob", mock.Anything, 1, 5, mock.MatchedBy(func(in JobUpdate) bool {
		return in.Title == "Staff Engineer" && in.IsApplied && in.UpdatedAt != nil && in.UpdatedAt.Equal(at)
	})).Return(&Job{ID: 5, UserID: 1, Title: "Staff Engineer", IsApplied: true, UpdatedAt: &at}, nil)

	w, response := perform(router, http.MethodPut, "/api/1/jobs/5",
		`{"title":"Staff Engineer","is_applied":true,"updated_at":"2024-06-01T12:00:00Z"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Updated job with id 5", response["message"])
	mockService.AssertExpectations(t)
}

func TestJobController_DeleteJob_Missing(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	mockService.On("DeleteJob", mock.Anything, 1, 999).Return(nil)

	w, response := perform(router, http.MethodDelete, "/api/1/jobs/999", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted job with id 999", response["message"])
}

func TestJobController_ServiceError(t *testing.T) {
	mockService := new(MockJobService)
	router := setupTestRouter(mockService, 1)

	mockService.On("DeleteJob", mock.Anything, 1, 5).Return(errors.New("unexpected"))

	w, response := perform(router, http.MethodDelete, "/api/1/jobs/5", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", response["message"])
}
