package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightwizard/internal/domain"
	wizardsvc "github.com/Domenick1991/flightwizard/internal/service/wizard"
	"github.com/Domenick1991/flightwizard/internal/wizard"
	"github.com/gin-gonic/gin"
)

type WizardHandler struct {
	service wizardsvc.WizardUseCase
}

type selectFlightRequest struct {
	FlightID int64 `json:"flight_id" binding:"required"`
}

type adjustPassengersRequest struct {
	Kind  domain.PassengerKind `json:"kind" binding:"required,oneof=adults children infants"`
	Delta int                  `json:"delta" binding:"required"`
}

type goBackRequest struct {
	Step domain.Step `json:"step" binding:"required,min=1,max=5"`
}

func NewWizardHandler(service wizardsvc.WizardUseCase) *WizardHandler {
	return &WizardHandler{service: service}
}

func (h *WizardHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.start)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.startOver)
	router.PUT("/:id/pending-search", h.savePendingSearch)
	router.POST("/:id/search", h.search)
	router.POST("/:id/passengers/adjust", h.adjustPassengers)
	router.POST("/:id/flights/select", h.selectFlight)
	router.POST("/:id/continue", h.continueToPassenger)
	router.POST("/:id/passenger", h.submitPassenger)
	router.POST("/:id/payment", h.confirmPayment)
	router.POST("/:id/back", h.goBack)
}

func (h *WizardHandler) start(c *gin.Context) {
	view, err := h.service.Start(c.Request.Context())
	if err != nil {
		respond(c, view, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *WizardHandler) get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *WizardHandler) startOver(c *gin.Context) {
	view, err := h.service.StartOver(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *WizardHandler) savePendingSearch(c *gin.Context) {
	var form wizard.SearchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SavePendingSearch(c.Request.Context(), c.Param("id"), form); err != nil {
		respond(c, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WizardHandler) search(c *gin.Context) {
	var form wizard.SearchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.Search(c.Request.Context(), c.Param("id"), form)
	respond(c, view, err)
}

func (h *WizardHandler) adjustPassengers(c *gin.Context) {
	var req adjustPassengersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.AdjustPassengers(c.Request.Context(), c.Param("id"), req.Kind, req.Delta)
	respond(c, view, err)
}

func (h *WizardHandler) selectFlight(c *gin.Context) {
	var req selectFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.SelectFlight(c.Request.Context(), c.Param("id"), req.FlightID)
	respond(c, view, err)
}

func (h *WizardHandler) continueToPassenger(c *gin.Context) {
	view, err := h.service.Continue(c.Request.Context(), c.Param("id"))
	respond(c, view, err)
}

func (h *WizardHandler) submitPassenger(c *gin.Context) {
	var form wizard.PassengerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.SubmitPassenger(c.Request.Context(), c.Param("id"), form)
	respond(c, view, err)
}

func (h *WizardHandler) confirmPayment(c *gin.Context) {
	var form wizard.PaymentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.ConfirmPayment(c.Request.Context(), c.Param("id"), form)
	respond(c, view, err)
}

func (h *WizardHandler) goBack(c *gin.Context) {
	var req goBackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.service.GoBack(c.Request.Context(), c.Param("id"), req.Step)
	respond(c, view, err)
}

// respond writes the view, or the error with the unchanged view beside it.
func respond(c *gin.Context, view *wizardsvc.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}

	var fieldErrs wizard.ValidationErrors
	var reqErr *wizard.RequestError
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fieldErrs, "wizard": view})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": reqErr.Notice(), "wizard": view})
	case errors.Is(err, wizardsvc.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "wizard": view})
	case errors.Is(err, wizard.ErrBusy),
		errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrBookingComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "wizard": view})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
