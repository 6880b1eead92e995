package usergroup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/warden/internal/application/usergroup/dto"
	"github.com/orris-inc/warden/internal/shared/utils"
)

// AssignForm returns the group and the users not yet in it
// @Summary Assign users form
// @Tags UserGroups
// @Produce json
// @Param id path int true "User group ID"
// @Success 200 {object} utils.APIResponse{data=dto.AssignUsersFormResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id}/assign-users [get]
func (h *Handler) AssignForm(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	result, err := h.assignUseCase.Form(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to load assign users form", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// AssignUsers adds or refreshes memberships for every listed user
// @Summary Assign users to group
// @Description All-or-nothing: one unknown user rejects the whole batch
// @Tags UserGroups
// @Accept json
// @Produce json
// @Param id path int true "User group ID"
// @Param request body dto.AssignUsersRequest true "Users to assign"
// @Success 200 {object} utils.APIResponse{data=dto.AssignUsersResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id}/assign-users [post]
func (h *Handler) AssignUsers(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}

	var req dto.AssignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for assign users", "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.assignUseCase.Execute(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.logger.Warnw("failed to assign users to group", "error", err, "id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users assigned to group successfully.", result)
}

// RemoveUser drops a user's membership; a missing membership is not an error
// @Summary Remove user from group
// @Tags UserGroups
// @Param id path int true "User group ID"
// @Param userId path int true "User ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /admin/user-groups/{id}/users/{userId} [delete]
func (h *Handler) RemoveUser(c *gin.Context) {
	id, ok := parseGroupID(c)
	if !ok {
		return
	}
	userID, ok := utils.ParseUintParam(c, "userId")
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	removed, err := h.removeUserUseCase.Execute(c.Request.Context(), actor(c), id, userID)
	if err != nil {
		h.logger.Errorw("failed to remove user from group", "error", err, "id", id, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User removed from group successfully.", gin.H{"removed": removed})
}
