package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lendbook/lendbook-api/internal/middleware"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/services"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type GroupRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// @Summary Create Group
// @Description Create a lending group
// @Tags Groups
// @Accept json
// @Produce json
// @Param request body GroupRequest true "Group Data"
// @Success 201 {object} models.GroupResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req GroupRequest
	if err := BindNestedOrFlat(c, "group", &req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
		return
	}

	group := &models.Group{
		UserID:    middleware.GetUserID(c),
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if err := h.groupService.CreateGroup(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group.ToResponse(), "message": "Group created successfully"})
}

// @Summary List Groups
// @Description List the user's lending groups
// @Tags Groups
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /groups [get]
func (h *GroupHandler) Index(c *gin.Context) {
	groups, err := h.groupService.ListGroups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"groups": responses})
}

// @Summary Get Group
// @Description Get a group by ID
// @Tags Groups
// @Produce json
// @Param group_id path int true "Group ID"
// @Success 200 {object} models.GroupResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /groups/{group_id} [get]
func (h *GroupHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	group, err := h.groupService.GetGroup(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group.ToResponse()})
}

// @Summary Update Group
// @Description Update a group's name and dates
// @Tags Groups
// @Accept json
// @Produce json
// @Param group_id path int true "Group ID"
// @Param request body GroupRequest true "Group Data"
// @Success 200 {object} models.GroupResponse
// @Security BearerAuth
// @Router /groups/{group_id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	ownerID := middleware.GetUserID(c)

	group, err := h.groupService.GetGroup(c.Request.Context(), ownerID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req GroupRequest
	if err := BindNestedOrFlat(c, "group", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.StartDate != "" {
		startDate, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
			return
		}
		group.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
			return
		}
		group.EndDate = endDate
	}

	if err := h.groupService.UpdateGroup(c.Request.Context(), ownerID, group); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group.ToResponse(), "message": "Group updated successfully"})
}

// @Summary Delete Group
// @Description Delete a group. Fails if it still has clients unless force=1, which also deletes clients and their loans.
// @Tags Groups
// @Produce json
// @Param group_id path int true "Group ID"
// @Param force query string false "Force delete with clients"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /groups/{group_id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("group_id"), 10, 32)
	ownerID := middleware.GetUserID(c)

	var err error
	if c.Query("force") == "1" {
		err = h.groupService.ForceDeleteGroup(c.Request.Context(), ownerID, uint(id))
	} else {
		err = h.groupService.DeleteGroup(c.Request.Context(), ownerID, uint(id))
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}
