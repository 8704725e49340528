package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lendbook/lendbook-api/internal/middleware"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/lendbook/lendbook-api/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

type ClientRequest struct {
	GroupID uint   `json:"group_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// @Summary Create Client
// @Description Create a client inside a group
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body ClientRequest true "Client Data"
// @Success 201 {object} models.ClientResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := BindNestedOrFlat(c, "client", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.GroupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client name and group_id are required"})
		return
	}

	client := &models.Client{
		UserID:  middleware.GetUserID(c),
		GroupID: req.GroupID,
		Name:    req.Name,
		Phone:   req.Phone,
	}

	if err := h.clientService.CreateClient(c.Request.Context(), client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"client": client.ToResponse(), "message": "Client created successfully"})
}

// @Summary List Clients
// @Description Get a paginated list of clients
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name or phone"
// @Param group_id query int false "Filter by group"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")
	query.Filters["group_id"] = c.Query("group_id")

	clients, total, err := h.clientService.ListClients(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.ClientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, clients[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Client
// @Description Get a client by ID
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Success 200 {object} models.ClientResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{client_id} [get]
func (h *ClientHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("client_id"), 10, 32)
	client, err := h.clientService.GetClient(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client.ToResponse()})
}

// @Summary Update Client
// @Description Update a client's name, phone or group
// @Tags Clients
// @Accept json
// @Produce json
// @Param client_id path int true "Client ID"
// @Param request body ClientRequest true "Client Data"
// @Success 200 {object} models.ClientResponse
// @Security BearerAuth
// @Router /clients/{client_id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("client_id"), 10, 32)
	ownerID := middleware.GetUserID(c)

	client, err := h.clientService.GetClient(c.Request.Context(), ownerID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	var req ClientRequest
	if err := BindNestedOrFlat(c, "client", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.GroupID != 0 {
		client.GroupID = req.GroupID
	}

	if err := h.clientService.UpdateClient(c.Request.Context(), ownerID, client); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client.ToResponse(), "message": "Client updated successfully"})
}

// @Summary Delete Client
// @Description Delete a client. Fails if they still have loans unless force=1, which also deletes the loans and their history.
// @Tags Clients
// @Produce json
// @Param client_id path int true "Client ID"
// @Param force query string false "Force delete with loans"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /clients/{client_id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("client_id"), 10, 32)
	force := c.Query("force") == "1"

	if err := h.clientService.DeleteClient(c.Request.Context(), middleware.GetUserID(c), uint(id), force); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
