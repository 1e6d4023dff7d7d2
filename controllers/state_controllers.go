package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
	"github.com/nnhatnam05/pizza-dolce-staff-console/utils"
)

type StateController struct {
	Store *store.Store
}

func NewStateController(st *store.Store) *StateController {
	return &StateController{Store: st}
}

// GetState -> snapshot penuh beserta hasil proyeksi
func (sc *StateController) GetState(c *gin.Context) {
	snap := sc.Store.Snapshot()
	utils.RespondJSON(c, http.StatusOK, "Current state", gin.H{
		"snapshot": snap,
		"view":     store.Project(snap),
	})
}

// GetTables -> view meja saja
func (sc *StateController) GetTables(c *gin.Context) {
	view := store.Project(sc.Store.Snapshot())
	utils.RespondJSON(c, http.StatusOK, "Table views", view.Tables)
}

// GetOrderByID -> detail 1 order dari working set
func (sc *StateController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	order, ok := sc.Store.GetOrder(uint(id))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// SelectOrder -> tandai order yang sedang dibuka di UI
func (sc *StateController) SelectOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	if !sc.Store.SelectOrder(uint(id)) {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order selected", nil)
}

// ClearSelection -> hapus seleksi order
func (sc *StateController) ClearSelection(c *gin.Context) {
	sc.Store.ClearSelection()
	utils.RespondJSON(c, http.StatusOK, "Selection cleared", nil)
}
