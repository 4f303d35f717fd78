package handlers

import (
	"net/http"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/services"
	"github.com/Su57/stardew/utils"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menuService *services.MenuService
	middleware  *Middleware
}

func NewMenuHandler(menuService *services.MenuService, middleware *Middleware) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		middleware:  middleware,
	}
}

func (m *MenuHandler) RegisterRoutes(router *gin.Engine) {
	menuGroup := router.Group("/system/menu")
	{
		menuGroup.GET("/tree", m.middleware.PermissionRequired("sys:menu:tree"), m.Tree)

		adminOnly := menuGroup.Group("", m.middleware.RoleRequired(services.AdminRoleName))
		adminOnly.GET("", m.ListMenus)
		adminOnly.GET("/tree_with_role/:role_id", m.TreeWithRole)
		adminOnly.GET("/:id", m.GetMenu)
		adminOnly.POST("", m.CreateMenu)
		adminOnly.PUT("/:id", m.UpdateMenu)
		adminOnly.DELETE("/:id", m.DeleteMenu)
	}
}

func (m *MenuHandler) ListMenus(c *gin.Context) {
	pageNo, pageSize := utils.ParsePaginationParams(c)

	menus, err := m.menuService.ListMenus(c.Request.Context(), pageNo, pageSize)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, menus)
}

func (m *MenuHandler) Tree(c *gin.Context) {
	tree, err := m.menuService.Tree(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, tree)
}

func (m *MenuHandler) TreeWithRole(c *gin.Context) {
	roleID, err := utils.ParseIDParam(c, "role_id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	result, err := m.menuService.TreeWithRole(c.Request.Context(), roleID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, result)
}

func (m *MenuHandler) GetMenu(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	menu, err := m.menuService.GetMenu(c.Request.Context(), id)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, menu)
}

func (m *MenuHandler) CreateMenu(c *gin.Context) {
	var req models.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	menu, err := m.menuService.CreateMenu(c.Request.Context(), &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, menu)
}

func (m *MenuHandler) UpdateMenu(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	var req models.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", err.Error())
		return
	}

	menu, err := m.menuService.UpdateMenu(c.Request.Context(), id, &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, menu)
}

func (m *MenuHandler) DeleteMenu(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	if err := m.menuService.DeleteMenu(c.Request.Context(), id); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "menu deleted")
}
