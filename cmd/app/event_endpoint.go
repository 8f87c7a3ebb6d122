package main

import (
	"net/http"
	"strings"

	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/services"
	"github.com/tankharsh/photocap/internal/validation"

	"github.com/labstack/echo/v4"
)

type createEventRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	EventType     string  `json:"eventType" validate:"required"`
	EventDate     string  `json:"eventDate" validate:"required,date"`
	EventLocation *string `json:"eventLocation" validate:"omitempty,max=200"`
	Duration      *int    `json:"duration" validate:"omitempty,min=1,max=24"`
	Budget        string  `json:"budget" validate:"required"`
	ClientName    string  `json:"clientName" validate:"required,max=100"`
	ClientEmail   string  `json:"clientEmail" validate:"required,email"`
	ClientPhone   *string `json:"clientPhone" validate:"omitempty,phone"`
	Status        string  `json:"status" validate:"omitempty,oneof=PLANNING IN_PROGRESS EDITING COMPLETED DELIVERED CANCELLED"`
}

func (r createEventRequest) event() *model.Event {
	date, _ := validation.ParseDate(r.EventDate)
	return &model.Event{
		Title:         strings.TrimSpace(r.Title),
		Description:   r.Description,
		EventType:     r.EventType,
		EventDate:     date,
		EventLocation: r.EventLocation,
		Duration:      r.Duration,
		Budget:        r.Budget,
		ClientName:    strings.TrimSpace(r.ClientName),
		ClientEmail:   r.ClientEmail,
		ClientPhone:   r.ClientPhone,
		Status:        model.EventStatus(r.Status),
	}
}

// updateEventRequest is createEventRequest with every field optional. The
// client email cannot change: it keys the client record.
type updateEventRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	EventType     *string `json:"eventType" validate:"omitempty,min=1"`
	EventDate     *string `json:"eventDate" validate:"omitempty,date"`
	EventLocation *string `json:"eventLocation" validate:"omitempty,max=200"`
	Duration      *int    `json:"duration" validate:"omitempty,min=1,max=24"`
	Budget        *string `json:"budget" validate:"omitempty,min=1"`
	ClientName    *string `json:"clientName" validate:"omitempty,min=1,max=100"`
	ClientPhone   *string `json:"clientPhone" validate:"omitempty,phone"`
	Status        *string `json:"status" validate:"omitempty,oneof=PLANNING IN_PROGRESS EDITING COMPLETED DELIVERED CANCELLED"`
}

func (r updateEventRequest) update() model.EventUpdate {
	u := model.EventUpdate{
		Title:         r.Title,
		Description:   r.Description,
		EventType:     r.EventType,
		EventDate:     parseOptionalDate(r.EventDate),
		EventLocation: r.EventLocation,
		Duration:      r.Duration,
		Budget:        r.Budget,
		ClientName:    r.ClientName,
		ClientPhone:   r.ClientPhone,
	}
	if r.Status != nil {
		s := model.EventStatus(*r.Status)
		u.Status = &s
	}
	return u
}

type eventHandler struct {
	events *services.EventService
}

func (h *eventHandler) list(c echo.Context) error {
	events, err := h.events.List(c.Request().Context(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": events})
}

func (h *eventHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	e, err := h.events.Get(c.Request().Context(), middleware.GetPrincipal(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": e})
}

func (h *eventHandler) create(c echo.Context) error {
	var req createEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	e, err := h.events.Create(c.Request().Context(), middleware.GetPrincipal(c).ID, req.event())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Event created successfully",
		"data":    e,
	})
}

func (h *eventHandler) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	e, err := h.events.Update(c.Request().Context(), middleware.GetPrincipal(c).ID, id, req.update())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Event updated successfully",
		"data":    e,
	})
}

func (h *eventHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.events.Delete(c.Request().Context(), middleware.GetPrincipal(c).ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}
