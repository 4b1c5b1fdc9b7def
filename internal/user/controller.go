package user

import (
	"fmt"
	"net/http"
	"strconv"

	"job_tracker/internal/common"
	"job_tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService UserServiceInterface
}

func NewUserController(userService UserServiceInterface) *UserController {
	return &UserController{
		userService: userService,
	}
}

// Register handles user registration
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, common.Validation("Invalid request body"))
		return
	}

	user, err := uc.userService.Register(c.Request.Context(), req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusCreated, fmt.Sprintf("User %s registered successfully", user.Username), user)
}

// Login handles user login and returns an access token
func (uc *UserController) Login(c *gin.Context) {
	var req LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, common.Validation("Invalid request body"))
		return
	}

	result, err := uc.userService.Login(c.Request.Context(), req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Status:  utils.StatusSuccess,
		Message: fmt.Sprintf("User %s logged in successfully", result.User.Username),
		Token:   result.Token,
		User:    result.User,
	})
}

func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.userService.ListUsers(c.Request.Context())
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Retrieved %d users", len(users)), users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	user, err := uc.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Retrieved user with id %d", id), user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, common.Validation("Invalid request body"))
		return
	}

	user, err := uc.userService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Updated user with id %d", id), user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := uc.userService.DeleteUser(c.Request.Context(), id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, http.StatusOK, fmt.Sprintf("Deleted user with id %d", id), nil)
}

func userIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, common.Validation("Invalid user ID"))
		return 0, false
	}
	return id, true
}
