package router

import (
	"github.com/gin-gonic/gin"

	"github.com/nnhatnam05/pizza-dolce-staff-console/controllers"
	"github.com/nnhatnam05/pizza-dolce-staff-console/middlewares"
	"github.com/nnhatnam05/pizza-dolce-staff-console/services"
	"github.com/nnhatnam05/pizza-dolce-staff-console/store"
)

// SetupRouter merangkai endpoint UI staff.
func SetupRouter(st *store.Store, status *services.StatusController, reconciler *services.Reconciler) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	stateCtrl := controllers.NewStateController(st)
	orderCtrl := controllers.NewOrderController(status)
	sessionCtrl := controllers.NewSessionController(status, reconciler)
	prefCtrl := controllers.NewPreferenceController()

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/state", stateCtrl.GetState)
		api.GET("/tables", stateCtrl.GetTables)
		api.GET("/orders/:order_id", stateCtrl.GetOrderByID)
		api.POST("/orders/:order_id/select", stateCtrl.SelectOrder)
		api.DELETE("/orders/:order_id/select", stateCtrl.ClearSelection)

		api.POST("/orders/:order_id/transition/check", orderCtrl.CheckTransition)
		api.POST("/orders/:order_id/transition", orderCtrl.CommitTransition)

		api.POST("/tables/:table_id/staff-call/resolve", sessionCtrl.ResolveStaffCall)
		api.POST("/tables/:table_id/payment-request/resolve", sessionCtrl.ResolvePaymentRequest)

		api.POST("/reconcile", sessionCtrl.TriggerReconcile)

		api.GET("/preferences", prefCtrl.GetPreferences)
		api.PUT("/preferences", middlewares.NewStrictRateLimiter(), prefCtrl.UpdatePreferences)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.SocketAuthMiddleware())
	{
		ws.GET("/staff", controllers.StaffSocketHandler(st))
	}

	return r
}
