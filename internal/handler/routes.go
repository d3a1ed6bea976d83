package handler

import (
	mid "github.com/MohammedAshfaquem/smatdine-backend/internal/middleware"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the customer and staff API on e
func RegisterRoutes(e *echo.Echo, h *Handler) {
	// Public routes - tables order without authentication
	e.GET("/health", HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler()))

	e.GET("/menu", h.ListMenu)
	e.GET("/menu/:id", h.GetMenuItem)
	e.GET("/custom-bases", h.ListBases)
	e.GET("/custom-ingredients", h.ListIngredients)

	e.GET("/tables/:table_number", h.GetTable)
	e.POST("/tables/:table_number/occupy", h.OccupyTable)
	e.POST("/tables/:table_number/release", h.ReleaseTable)

	e.GET("/cart/:table_number", h.GetCart)
	e.POST("/cart/add", h.AddToCart)
	e.PUT("/cart/update", h.UpdateCartItem)
	e.DELETE("/cart/:table_number/items/:item_id", h.RemoveCartItem)
	e.DELETE("/cart/:table_number", h.ClearCart)
	e.GET("/cart/count/:table_number", h.CartCount)
	e.GET("/cart/item-quantity/:table_number", h.ItemQuantity)

	e.POST("/order/place", h.PlaceOrder)
	e.GET("/orders/:table_number", h.TableOrders)
	e.GET("/order/:order_id", h.GetOrder)
	e.POST("/feedback/:order_id", h.SubmitFeedback)
	e.POST("/waiter-request/:table_number", h.CreateWaiterRequest)

	e.POST("/custom-dish/create/:table_number", h.CreateCustomDish)
	e.GET("/custom-dishes/:table_number", h.TableCustomDishes)
	e.POST("/custom-dish/:custom_dish_id/reorder", h.ReorderCustomDish)

	// Staff routes - all require a valid token
	api := e.Group("/api", mid.AuthMiddleware)
	kitchen := mid.RequireRole(jwtutil.RoleKitchen, jwtutil.RoleAdmin)
	floor := mid.RequireRole(jwtutil.RoleWaiter, jwtutil.RoleAdmin)
	admin := mid.RequireRole(jwtutil.RoleAdmin)

	api.GET("/kitchen/orders", h.KitchenOrders, kitchen)
	api.POST("/orders/:order_id/status", h.UpdateOrderStatus)
	api.GET("/orders", h.ListOrders)
	api.POST("/waiter/orders/:order_id/served", h.MarkServed)

	api.GET("/waiter-requests", h.ListWaiterRequests, floor)
	api.PATCH("/waiter-requests/:id", h.UpdateWaiterRequest, floor)
	api.GET("/waiter/requests/:table_number", h.TableWaiterRequests, floor)
	api.POST("/waiter/tables/clear/:table_number", h.ClearTable, floor)

	api.GET("/tables", h.ListTables)
	api.GET("/tables/:table_number/history", h.TableHistory, floor)
	api.GET("/menu/low-stock", h.LowStock, kitchen)

	api.PUT("/custom-dish/:custom_dish_id/ingredients", h.UpdateCustomDishIngredients, kitchen)
	api.GET("/custom-dishes", h.ListCustomDishes)
	api.GET("/leaderboard", h.Leaderboard, admin)
}
