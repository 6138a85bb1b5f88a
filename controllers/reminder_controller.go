package controllers

import (
	"net/http"

	"wellness/models"

	"github.com/gin-gonic/gin"
)

func GetReminderSettings(c *gin.Context) {
	c.JSON(http.StatusOK, localStore(c).ReminderSettings())
}

type reminderSettingsReq struct {
	WaterEnabled  bool     `json:"waterEnabled"`
	WaterInterval float64  `json:"waterInterval" binding:"required,gt=0,lte=24"`
	MealEnabled   bool     `json:"mealEnabled"`
	MealTimes     []string `json:"mealTimes" binding:"required,dive,hhmm"`
}

// UpdateReminderSettings persists the settings; the scheduler picks them up
// on its next tick, not instantly.
func UpdateReminderSettings(c *gin.Context) {
	var req reminderSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	localStore(c).SaveReminderSettings(models.ReminderSettings{
		WaterEnabled:       req.WaterEnabled,
		WaterIntervalHours: req.WaterInterval,
		MealEnabled:        req.MealEnabled,
		MealTimes:          req.MealTimes,
	})
	c.JSON(http.StatusOK, gin.H{"message": "reminder settings updated"})
}
