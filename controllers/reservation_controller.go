package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableorder/models"
	"tableorder/services"
)

type ReservationController struct {
	reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{reservations: reservations}
}

func (rc *ReservationController) Register(api *gin.RouterGroup) {
	api.GET("/reservations", rc.ListReservations)
	api.POST("/reservations", rc.CreateReservation)
	api.GET("/reservations/:id", rc.GetReservation)
	api.PATCH("/reservations/:id", rc.UpdateReservationStatus)
	api.POST("/reservations/:id/check-in", rc.CheckIn)
	api.POST("/reservations/:id/cancel", rc.Cancel)
}

func (rc *ReservationController) ListReservations(c *gin.Context) {
	defer record(c, "reservation", "list")

	list, err := rc.reservations.List(c.Request.Context(), c.Query("shopId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	defer record(c, "reservation", "create")

	var in models.CreateReservationInput
	if !bindJSON(c, &in) {
		return
	}
	r, err := rc.reservations.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (rc *ReservationController) GetReservation(c *gin.Context) {
	defer record(c, "reservation", "get")

	r, err := rc.reservations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	defer record(c, "reservation", "status")

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := rc.reservations.Transition(c.Request.Context(), c.Param("id"), models.ReservationStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CheckIn 入座
func (rc *ReservationController) CheckIn(c *gin.Context) {
	defer record(c, "reservation", "check_in")

	r, err := rc.reservations.CheckIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	defer record(c, "reservation", "cancel")

	r, err := rc.reservations.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
