package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tankharsh/photocap/internal/services"
)

func verifyEmailHandler(svc *services.EmailVerificationService) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "token required",
			})
		}

		if err := svc.Verify(
			c.Request().Context(),
			token,
		); err != nil {
			return err
		}

		return c.JSON(http.StatusOK, echo.Map{
			"message": "email verified",
		})
	}
}
