package usergroup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/shared/utils"
)

// Permissions returns every capability grouped by section with the group's disposition
// @Summary Group permission form
// @Tags UserGroups
// @Produce json
// @Param id path int true "User group ID"
// @Success 200 {object} utils.APIResponse{data=dto.PermissionFormResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id}/permissions [get]
func (h *Handler) Permissions(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	result, err := h.permissionsUseCase.Form(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to load group permissions", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdatePermissions grants, denies or removes capabilities for the group
// @Summary Update group permissions
// @Description Values are grant, deny or remove. Any unknown name or action rejects the batch
// @Tags UserGroups
// @Accept json
// @Produce json
// @Param id path int true "User group ID"
// @Param request body dto.UpdatePermissionsRequest true "Permission changes"
// @Success 200 {object} utils.APIResponse{data=dto.UpdatePermissionsResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id}/permissions [put]
func (h *Handler) UpdatePermissions(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	var req dto.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update group permissions", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.permissionsUseCase.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.logger.Warnw("failed to update group permissions", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Group permissions updated successfully.", result)
}
