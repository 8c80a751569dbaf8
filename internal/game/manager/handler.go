package manager

import (
	"errors"
	"net/http"

	"BlackJack/internal/roomstore"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	mgr *GameManager
}

func NewHandler(mgr *GameManager) *Handler {
	return &Handler{mgr: mgr}
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

type joinRoomRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// POST /rooms  body: {name}
func (h *Handler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerID := c.GetString("playerID")
	eng, err := h.mgr.CreateRoom(c.Request.Context(), playerID, req.Name)
	if err != nil {
		status := http.StatusInternalServerError
		var dup *AlreadyInRoomError
		if errors.As(err, &dup) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, eng.Snapshot())
}

// POST /rooms/join  body: {code, name}
func (h *Handler) Join(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerID := c.GetString("playerID")
	eng, err := h.mgr.JoinRoom(c.Request.Context(), req.Code, playerID, req.Name)
	if err != nil {
		status := http.StatusInternalServerError
		var dup *AlreadyInRoomError
		switch {
		case errors.Is(err, roomstore.ErrRoomNotFound):
			status = http.StatusNotFound
		case errors.As(err, &dup):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, eng.Snapshot())
}

// POST /rooms/leave
func (h *Handler) Leave(c *gin.Context) {
	playerID := c.GetString("playerID")
	if err := h.mgr.LeaveRoom(c.Request.Context(), playerID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, roomstore.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /rooms/:code
func (h *Handler) State(c *gin.Context) {
	code := c.Param("code")
	eng, ok := h.mgr.EngineByCode(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": roomstore.ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, eng.Snapshot())
}

// POST /rooms/:code/spectate
func (h *Handler) Spectate(c *gin.Context) {
	code := c.Param("code")
	playerID := c.GetString("playerID")
	if err := h.mgr.SpectateRoom(code, playerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
