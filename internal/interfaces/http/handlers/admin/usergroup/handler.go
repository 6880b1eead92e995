// Package usergroup provides HTTP handlers for admin user group operations.
package usergroup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/application/usergroup/usecases"
	"github.com/orris-inc/warden/internal/shared/authorization"
	"github.com/orris-inc/warden/internal/shared/logger"
	"github.com/orris-inc/warden/internal/shared/utils"
)

// Handler handles admin user group operations
type Handler struct {
	listUseCase        listUserGroupsUseCase
	searchUseCase      searchUserGroupsUseCase
	getUseCase         getUserGroupUseCase
	createUseCase      createUserGroupUseCase
	updateUseCase      updateUserGroupUseCase
	deleteUseCase      deleteUserGroupUseCase
	assignUseCase      assignUsersUseCase
	removeUserUseCase  removeUserUseCase
	permissionsUseCase groupPermissionsUseCase
	logger             logger.Interface
}

// NewHandler creates a new admin user group handler
func NewHandler(
	listUC *usecases.ListUserGroupsUseCase,
	searchUC *usecases.SearchUserGroupsUseCase,
	getUC *usecases.GetUserGroupUseCase,
	createUC *usecases.CreateUserGroupUseCase,
	updateUC *usecases.UpdateUserGroupUseCase,
	deleteUC *usecases.DeleteUserGroupUseCase,
	assignUC *usecases.AssignUsersUseCase,
	removeUC *usecases.RemoveUserUseCase,
	permissionsUC *usecases.GroupPermissionsUseCase,
	logger logger.Interface,
) *Handler {
	return &Handler{
		listUseCase:        listUC,
		searchUseCase:      searchUC,
		getUseCase:         getUC,
		createUseCase:      createUC,
		updateUseCase:      updateUC,
		deleteUseCase:      deleteUC,
		assignUseCase:      assignUC,
		removeUserUseCase:  removeUC,
		permissionsUseCase: permissionsUC,
		logger:             logger,
	}
}

// List lists user groups with search, status and legacy filters
// @Summary List user groups
// @Description Paginated user groups, 15 per page, ordered by sort order then id
// @Tags UserGroups
// @Produce json
// @Param page query int false "Page number"
// @Param search query string false "Matches name, display name or description"
// @Param status query string false "active or inactive"
// @Param legacy query string false "yes or no"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /admin/user-groups [get]
func (h *Handler) List(c *gin.Context) {
	var req dto.ListUserGroupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warnw("invalid query for list user groups", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to list user groups", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Search returns active groups matching the search term
// @Summary Search user groups
// @Description Active groups whose name or display name match, at most 20
// @Tags UserGroups
// @Produce json
// @Param search query string false "Search term"
// @Success 200 {object} utils.APIResponse{data=[]dto.SearchResultResponse}
// @Router /admin/user-groups/ajax [get]
func (h *Handler) Search(c *gin.Context) {
	var req dto.SearchUserGroupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	results, err := h.searchUseCase.Execute(c.Request.Context(), req.Search)
	if err != nil {
		h.logger.Errorw("failed to search user groups", "error", err, "search", req.Search)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", results)
}

// Get returns a group with its permissions and effective members
// @Summary Get user group
// @Tags UserGroups
// @Produce json
// @Param id path int true "User group ID"
// @Success 200 {object} utils.APIResponse{data=dto.UserGroupDetailResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to get user group", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Create creates a user group and grants the listed permissions
// @Summary Create user group
// @Tags UserGroups
// @Accept json
// @Produce json
// @Param request body dto.CreateUserGroupRequest true "User group"
// @Success 201 {object} utils.APIResponse{data=dto.UserGroupResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /admin/user-groups [post]
func (h *Handler) Create(c *gin.Context) {
	var req dto.CreateUserGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create user group", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), actor(c), req)
	if err != nil {
		h.logger.Errorw("failed to create user group", "error", err, "name", req.Name)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "User group created successfully.")
}

// Update replaces a group's attributes and, when given, its granted permissions
// @Summary Update user group
// @Tags UserGroups
// @Accept json
// @Produce json
// @Param id path int true "User group ID"
// @Param request body dto.UpdateUserGroupRequest true "User group"
// @Success 200 {object} utils.APIResponse{data=dto.UserGroupResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update user group", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.logger.Errorw("failed to update user group", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User group updated successfully.", result)
}

// Delete removes an empty group
// @Summary Delete user group
// @Description Refused with 409 while the group still has members
// @Tags UserGroups
// @Param id path int true "User group ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /admin/user-groups/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), actor(c), id); err != nil {
		h.logger.Warnw("failed to delete user group", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User group deleted successfully.", nil)
}

func actor(c *gin.Context) *authorization.Principal {
	return authorization.FromContext(c.Request.Context())
}

func parseGroupID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseUintParam(c, "id")
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user group ID")
	}
	return id, ok
}
