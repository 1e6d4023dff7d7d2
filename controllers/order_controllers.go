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

type OrderController struct {
	Status *services.StatusController
}

func NewOrderController(status *services.StatusController) *OrderController {
	return &OrderController{Status: status}
}

func bindTransition(c *gin.Context) (services.TransitionRequest, bool) {
	var req services.TransitionRequest

	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return req, false
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return req, false
	}
	req.OrderID = uint(id)

	// Staff pelaku diambil dari token, bukan dari body
	if userID, exists := c.Get("userID"); exists {
		req.ActorID = userID.(uint)
	}
	return req, true
}

// CheckTransition -> tahap pertama konfirmasi dua langkah: validasi +
// peringatan kepemilikan, tanpa request ke backend.
func (oc *OrderController) CheckTransition(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}

	check, err := oc.Status.Prepare(req)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transition allowed", check)
}

// CommitTransition -> tahap kedua: eksekusi transisi yang sudah dikonfirmasi
func (oc *OrderController) CommitTransition(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}

	order, err := oc.Status.Commit(req)
	if err != nil {
		respondTransitionError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownOrder):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrProofRequired):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrConfirmRequired):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, client.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, client.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusBadGateway, err)
	}
}
