package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nnhatnam05/pizza-dolce-staff-console/client"
	"github.com/nnhatnam05/pizza-dolce-staff-console/services"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

type SessionController struct {
	Status     *services.StatusController
	Reconciler *services.Reconciler
}

func NewSessionController(status *services.StatusController, reconciler *services.Reconciler) *SessionController {
	return &SessionController{Status: status, Reconciler: reconciler}
}

func tableIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return 0, false
	}
	return uint(id), true
}

// ResolveStaffCall -> selesaikan panggilan staff sebuah meja
func (sc *SessionController) ResolveStaffCall(c *gin.Context) {
	tableID, ok := tableIDParam(c)
	if !ok {
		return
	}

	if err := sc.Status.ResolveStaffCall(tableID); err != nil {
		respondResolveError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff call resolved", nil)
}

// ResolvePaymentRequest -> selesaikan permintaan tagihan sebuah meja
func (sc *SessionController) ResolvePaymentRequest(c *gin.Context) {
	tableID, ok := tableIDParam(c)
	if !ok {
		return
	}

	if err := sc.Status.ResolvePaymentRequest(tableID); err != nil {
		respondResolveError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment request resolved", nil)
}

// TriggerReconcile -> jalankan satu pass reconcile on demand
func (sc *SessionController) TriggerReconcile(c *gin.Context) {
	go sc.Reconciler.Reconcile()
	utils.RespondJSON(c, http.StatusAccepted, "Reconciliation started", nil)
}

func respondResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, client.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, client.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusBadGateway, err)
	}
}
