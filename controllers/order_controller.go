package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableorder/middlewares"
	"tableorder/models"
	"tableorder/services"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) Register(api *gin.RouterGroup) {
	api.GET("/orders", oc.ListOrders)
	api.POST("/orders", oc.CreateOrder)
	api.GET("/orders/:id", oc.GetOrder)
	api.PATCH("/orders/:id", oc.UpdateOrderStatus)
	api.POST("/orders/:id/serve", oc.MarkServed)
	api.POST("/orders/:id/pay", oc.MarkPaid)
	api.POST("/orders/:id/adjustments", oc.AddAdjustment)
	api.PATCH("/orders/:id/adjustments/:adjustmentId", oc.UpdateAdjustment)
	api.DELETE("/orders/:id/adjustments/:adjustmentId", oc.RemoveAdjustment)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	defer record(c, "order", "create")

	var in models.CreateOrderInput
	if !bindJSON(c, &in) {
		return
	}
	order, err := oc.orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.ObserveOrderTotal(order.TotalPrice)
	c.JSON(http.StatusCreated, order)
}

func (oc *OrderController) ListOrders(c *gin.Context) {
	defer record(c, "order", "list")

	orders, err := oc.orders.List(c.Request.Context(), models.OrderFilter{
		ShopID:  c.Query("shopId"),
		TableNo: c.Query("tableNo"),
		GuestID: c.Query("guestId"),
		Status:  models.OrderStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	defer record(c, "order", "get")

	order, err := oc.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 更新订单状态
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	defer record(c, "order", "status")

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orders.Transition(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) MarkServed(c *gin.Context) {
	defer record(c, "order", "serve")

	order, err := oc.orders.MarkServed(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) MarkPaid(c *gin.Context) {
	defer record(c, "order", "pay")

	order, err := oc.orders.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) AddAdjustment(c *gin.Context) {
	defer record(c, "adjustment", "add")

	var spec models.AdjustmentSpec
	if !bindJSON(c, &spec) {
		return
	}
	order, err := oc.orders.AddAdjustment(c.Request.Context(), c.Param("id"), spec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (oc *OrderController) UpdateAdjustment(c *gin.Context) {
	defer record(c, "adjustment", "update")

	var patch models.AdjustmentPatch
	if !bindJSON(c, &patch) {
		return
	}
	order, err := oc.orders.UpdateAdjustment(c.Request.Context(), c.Param("id"), c.Param("adjustmentId"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) RemoveAdjustment(c *gin.Context) {
	defer record(c, "adjustment", "remove")

	order, err := oc.orders.RemoveAdjustment(c.Request.Context(), c.Param("id"), c.Param("adjustmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
