package handlers

import (
	"net/http"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/services"
	"github.com/Su57/stardew/utils"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService *services.RoleService
	middleware  *Middleware
}

func NewRoleHandler(roleService *services.RoleService, middleware *Middleware) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		middleware:  middleware,
	}
}

func (r *RoleHandler) RegisterRoutes(router *gin.Engine) {
	roleGroup := router.Group("/system/role")
	{
		roleGroup.GET("", r.middleware.PermissionRequired("sys:role:list"), r.ListRoles)
		roleGroup.GET("/:id", r.middleware.PermissionRequired("sys:role:query"), r.GetRole)
		roleGroup.GET("/:id/menus", r.middleware.PermissionRequired("sys:role:query"), r.GetRoleMenus)
		roleGroup.POST("", r.middleware.PermissionRequired("sys:role:add"), r.CreateRole)
		roleGroup.PUT("/:id", r.middleware.PermissionRequired("sys:role:update"), r.UpdateRole)
		roleGroup.PUT("/:id/menus", r.middleware.PermissionRequired("sys:role:update"), r.AssignMenus)
		roleGroup.DELETE("/:id", r.middleware.PermissionRequired("sys:role:delete"), r.DeleteRole)
	}
}

func (r *RoleHandler) ListRoles(c *gin.Context) {
	pageNo, pageSize := utils.ParsePaginationParams(c)

	roles, err := r.roleService.ListRoles(c.Request.Context(), pageNo, pageSize)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, roles)
}

func (r *RoleHandler) GetRole(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	role, err := r.roleService.GetRole(c.Request.Context(), id)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, role)
}

func (r *RoleHandler) GetRoleMenus(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	menus, err := r.roleService.GetRoleMenus(c.Request.Context(), id)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, menus)
}

func (r *RoleHandler) CreateRole(c *gin.Context) {
	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	role, err := r.roleService.CreateRole(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, role)
}

func (r *RoleHandler) UpdateRole(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	role, err := r.roleService.UpdateRole(c.Request.Context(), id, &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, role)
}

func (r *RoleHandler) AssignMenus(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	var req models.AssignMenusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	if err := r.roleService.AssignMenus(c.Request.Context(), id, req.MenuIDs); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "role menus updated")
}

func (r *RoleHandler) DeleteRole(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := r.roleService.DeleteRole(c.Request.Context(), id); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "role deleted")
}
