package controllers

import (
	"io"
	"net/http"

	"wellness/config"
	"wellness/models"
	"wellness/services"
	"wellness/utils"

	"github.com/gin-gonic/gin"
)

// localStore builds the calling account's view of the device store.
func localStore(c *gin.Context) *services.LocalStore {
	uid := c.GetUint("accountID")
	return services.NewLocalStore(services.NewGormDeviceStore(config.DB, uid), utils.L())
}

func GetProfile(c *gin.Context) {
	data, ok := localStore(c).Get()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no profile yet"})
		return
	}

	resp := gin.H{
		"profile": data.Profile,
		"goals":   data.Goals,
		"streak":  data.Streak,
	}
	if bmi, err := utils.CalculateBMI(data.Profile.Height, data.Profile.Weight); err == nil {
		resp["bmi"] = bmi
		resp["bmi_category"] = utils.BMICategory(bmi)
	}
	c.JSON(http.StatusOK, resp)
}

type profileUpdateReq struct {
	Profile models.UserProfile `json:"profile" binding:"required"`
	Goals   models.Goals       `json:"goals" binding:"required"`
}

// UpdateProfile creates the aggregate on first write (onboarding) and
// replaces profile and goals afterwards.
func UpdateProfile(c *gin.Context) {
	var req profileUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := localStore(c)
	data, _ := store.Get()
	data.Profile = req.Profile
	data.Goals = req.Goals
	if data.DailyRecords == nil {
		data.DailyRecords = make(map[string]models.DailyData)
	}
	store.Save(data)

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

func GetDailyRecord(c *gin.Context) {
	date := c.Param("date")
	c.JSON(http.StatusOK, localStore(c).GetDailyRecord(date))
}

func SaveDailyRecord(c *gin.Context) {
	var rec models.DailyData
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := localStore(c)
	store.SaveDailyRecord(rec)

	data, _ := store.Get()
	c.JSON(http.StatusOK, gin.H{"streak": data.Streak})
}

func ExportData(c *gin.Context) {
	blob, err := localStore(c).Export()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=wellness-export.json")
	c.Data(http.StatusOK, "application/json", blob)
}

func ImportData(c *gin.Context) {
	blob, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if err := localStore(c).Import(blob); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "data imported"})
}

// ResetLimits clears chat counters and reminder fire markers. Testing hook.
func ResetLimits(c *gin.Context) {
	localStore(c).ResetLimits()
	c.JSON(http.StatusOK, gin.H{"message": "limits reset"})
}

// ClearData wipes the aggregate. Explicit logout path only.
func ClearData(c *gin.Context) {
	localStore(c).Clear()
	c.JSON(http.StatusOK, gin.H{"message": "data cleared"})
}
