package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

type PreferenceController struct{}

func NewPreferenceController() *PreferenceController {
	return &PreferenceController{}
}

// GetPreferences -> bahasa UI yang dipersist (token tidak ikut keluar)
func (pc *PreferenceController) GetPreferences(c *gin.Context) {
	pref, err := utils.GetPreference()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Preferences", pref)
}

// UpdatePreferences -> simpan bahasa dan/atau token auth baru
func (pc *PreferenceController) UpdatePreferences(c *gin.Context) {
	type ReqBody struct {
		Language  string `json:"language"`
		AuthToken string `json:"authToken"`
	}

	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	pref, err := utils.SavePreference(body.Language, body.AuthToken)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Preferences updated", pref)
}
