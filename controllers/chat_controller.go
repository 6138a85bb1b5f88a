package controllers

import (
	"net/http"
	"time"

	"wellness/config"
	"wellness/models"
	"wellness/services"

	"github.com/gin-gonic/gin"
)

func quotaInputs(c *gin.Context) (bool, *time.Time, bool) {
	uid := c.GetUint("accountID")
	var account models.Account
	if err := config.DB.First(&account, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return false, nil, false
	}
	created := account.CreatedAt
	return account.PremiumActive(time.Now()), &created, true
}

// GET /chat/quota
func CheckQuota(c *gin.Context) {
	premium, created, ok := quotaInputs(c)
	if !ok {
		return
	}
	guard := services.NewQuotaGuard(localStore(c))
	c.JSON(http.StatusOK, guard.CanSend(premium, created))
}

type chatReq struct {
	Message string `json:"message" binding:"required"`
}

// POST /chat/message — checks quota, then counts the accepted message.
// Increment runs exactly once per accepted message; there is no atomicity
// across concurrent senders.
func SendChatMessage(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	premium, created, ok := quotaInputs(c)
	if !ok {
		return
	}

	guard := services.NewQuotaGuard(localStore(c))
	res := guard.CanSend(premium, created)
	if !res.CanSend {
		c.JSON(http.StatusTooManyRequests, res)
		return
	}
	guard.Increment()

	c.JSON(http.StatusOK, gin.H{"accepted": true})
}
