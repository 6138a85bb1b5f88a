package controllers

import (
	"errors"
	"io"
	"net/http"

	"wellness/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Gateway  *services.NotificationGateway
	Worker   *services.Worker
	Platform *services.DevicePlatform
}

func NewNotificationController(g *services.NotificationGateway, w *services.Worker, p *services.DevicePlatform) *NotificationController {
	return &NotificationController{Gateway: g, Worker: w, Platform: p}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotEnabled):
		return http.StatusConflict
	case errors.Is(err, services.ErrMissingServerKey):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (nc *NotificationController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, nc.Gateway.Status())
}

func (nc *NotificationController) Enable(c *gin.Context) {
	uid := c.GetUint("accountID")
	if err := nc.Gateway.Enable(c.Request.Context(), uid); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, nc.Gateway.Status())
}

func (nc *NotificationController) Disable(c *gin.Context) {
	uid := c.GetUint("accountID")
	if err := nc.Gateway.Disable(c.Request.Context(), uid); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, nc.Gateway.Status())
}

func (nc *NotificationController) SendTest(c *gin.Context) {
	if err := nc.Gateway.SendTest(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type permissionReq struct {
	State string `json:"state" binding:"required,oneof=default granted denied"`
}

// SetPermission records the device-side permission prompt outcome.
func (nc *NotificationController) SetPermission(c *gin.Context) {
	var req permissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nc.Platform.SetPermission(services.PermissionState(req.State))
	c.JSON(http.StatusOK, gin.H{"state": req.State})
}

// Push injects a raw platform push payload into the worker, the way the
// push service would deliver it.
func (nc *NotificationController) Push(c *gin.Context) {
	uid := c.GetUint("accountID")
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if err := nc.Worker.HandlePush(c.Request.Context(), uid, payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type clickReq struct {
	ID string `json:"id" binding:"required"`
}

// Click routes a notification click: close it, focus a client already on
// the target URL or open a new one.
func (nc *NotificationController) Click(c *gin.Context) {
	var req clickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := nc.Worker.HandleClick(c.Request.Context(), req.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (nc *NotificationController) History(c *gin.Context) {
	uid := c.GetUint("accountID")
	rows, err := services.RecentNotifications(uid, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
