package main

import (
	"net/http"

	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/services"

	"github.com/labstack/echo/v4"
)

type clientHandler struct {
	clients *services.ClientService
}

func (h *clientHandler) list(c echo.Context) error {
	clients, err := h.clients.List(c.Request().Context(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": clients})
}
