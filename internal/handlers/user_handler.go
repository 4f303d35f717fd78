package handlers

import (
	"net/http"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/services"
	"github.com/Su57/stardew/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.IUserService
	middleware  *Middleware
}

func NewUserHandler(userService services.IUserService, middleware *Middleware) *UserHandler {
	return &UserHandler{
		userService: userService,
		middleware:  middleware,
	}
}

func (u *UserHandler) RegisterRoutes(router *gin.Engine) {
	userGroup := router.Group("/system/user")
	{
		userGroup.GET("", u.middleware.PermissionRequired("sys:user:list"), u.ListUsers)
		userGroup.GET("/:id", u.middleware.PermissionRequired("sys:user:query"), u.GetUser)
		userGroup.GET("/:id/roles", u.middleware.PermissionRequired("sys:user:query"), u.GetUserRoles)
		userGroup.POST("", u.middleware.PermissionRequired("sys:user:add"), u.CreateUser)
		userGroup.PUT("/:id", u.middleware.PermissionRequired("sys:user:update"), u.UpdateUser)
		userGroup.DELETE("/:id", u.middleware.PermissionRequired("sys:user:delete"), u.DeleteUser)
	}
}

func (u *UserHandler) ListUsers(c *gin.Context) {
	pageNo, pageSize := utils.ParsePaginationParams(c)

	users, err := u.userService.ListUsers(c.Request.Context(), pageNo, pageSize)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, users)
}

func (u *UserHandler) GetUser(c *gin.Context) {
	user, err := u.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

func (u *UserHandler) GetUserRoles(c *gin.Context) {
	roles, err := u.userService.GetUserRoles(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, roles)
}

func (u *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	user, err := u.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, user)
}

func (u *UserHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	user, err := u.userService.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// DeleteUser hard deletes unless ?soft=true is given.
func (u *UserHandler) DeleteUser(c *gin.Context) {
	soft := c.Query("soft") == "true"

	if err := u.userService.DeleteUser(c.Request.Context(), c.Param("id"), soft); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "user deleted")
}
