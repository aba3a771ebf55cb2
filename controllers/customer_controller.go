package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tableorder/middlewares"
	"tableorder/models"
	"tableorder/services"
	"tableorder/utils"
)

// CustomerController serves guests who scanned a table QR code. The shop
// and table always come from the verified token, never from the body.
type CustomerController struct {
	orders *services.OrderService
	menus  *services.MenuService
	tokens *utils.TableTokens
}

func NewCustomerController(orders *services.OrderService, menus *services.MenuService, tokens *utils.TableTokens) *CustomerController {
	return &CustomerController{orders: orders, menus: menus, tokens: tokens}
}

func (cc *CustomerController) Register(api *gin.RouterGroup) {
	customer := api.Group("/customer")
	customer.Use(middlewares.TableTokenMiddleware(cc.tokens))
	{
		customer.GET("/menu", cc.GetMenu)
		customer.POST("/orders", cc.CreateOrder)
		customer.GET("/orders", cc.ListOrders)
	}
}

// GetMenu only exposes published menus.
func (cc *CustomerController) GetMenu(c *gin.Context) {
	defer record(c, "customer", "menu")

	shopID := c.GetString(middlewares.ContextShopID)
	menu, err := cc.menus.Get(c.Request.Context(), shopID)
	if err == nil && !menu.IsPublished {
		err = &models.NotFoundError{Entity: "menu", ID: shopID}
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (cc *CustomerController) CreateOrder(c *gin.Context) {
	defer record(c, "customer", "create_order")

	var in models.CreateOrderInput
	if !bindJSON(c, &in) {
		return
	}
	in.ShopID = c.GetString(middlewares.ContextShopID)
	in.TableNo = c.GetString(middlewares.ContextTableNo)
	// 顾客不能自行添加折扣或附加费
	in.Adjustments = nil

	order, err := cc.orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.ObserveOrderTotal(order.TotalPrice)
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns one guest's history at the token's table; other guests
// who sat there are never listed.
func (cc *CustomerController) ListOrders(c *gin.Context) {
	defer record(c, "customer", "list_orders")

	guestID := strings.TrimSpace(c.Query("guestId"))
	if guestID == "" {
		respondError(c, models.NewValidationError("guestId", "guestId is required"))
		return
	}
	orders, err := cc.orders.List(c.Request.Context(), models.OrderFilter{
		ShopID:  c.GetString(middlewares.ContextShopID),
		TableNo: c.GetString(middlewares.ContextTableNo),
		GuestID: guestID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
