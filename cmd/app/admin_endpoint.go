package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72,strongpassword"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=SUPER_ADMIN"`
}

type adminUpdateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=100"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,strongpassword"`
}

type adminHandler struct {
	auth        *services.AdminAuthService
	studioUsers *services.StudioUserService
	secure      bool
	log         *slog.Logger
}

func (h *adminHandler) login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, middleware.AdminCookieName, session.Token, h.auth.TTL(), h.secure)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged in successfully",
		"token":   session.Token,
		"admin":   session.Profile,
	})
}

// register creates another admin. The caller is already signed in, so
// their cookie is left alone.
func (h *adminHandler) register(c echo.Context) error {
	var req adminRegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, model.AdminRegistration{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Admin registered successfully",
		"admin":   session.Profile,
	})
}

func (h *adminHandler) logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context(), middleware.GetPrincipal(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

func (h *adminHandler) profile(c echo.Context) error {
	p, err := h.auth.GetProfile(c.Request().Context(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile retrieved successfully",
		"admin":   p,
	})
}

func (h *adminHandler) updateProfile(c echo.Context) error {
	var req adminUpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.auth.UpdateProfile(c.Request().Context(), middleware.GetPrincipal(c).ID, model.AdminProfileUpdate{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"admin":   p,
	})
}

func (h *adminHandler) changePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.Request().Context(), middleware.GetPrincipal(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// verifyToken reports the principal the session gate resolved.
func (h *adminHandler) verifyToken(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Token is valid",
		"admin":     middleware.GetPrincipal(c),
		"expiresAt": middleware.GetClaims(c).ExpiresAt.Time,
	})
}

func (h *adminHandler) listStudioUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.studioUsers.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": users})
}

func (h *adminHandler) getStudioUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	u, err := h.studioUsers.Auth.GetProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

func (h *adminHandler) setStudioUserActive(active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := h.studioUsers.Auth.SetActive(c.Request().Context(), id, active); err != nil {
			return err
		}
		msg := "Studio user deactivated"
		if active {
			msg = "Studio user activated"
		}
		h.log.Info(msg, "studio_user_id", id, "admin_id", middleware.GetPrincipal(c).ID)
		return c.JSON(http.StatusOK, echo.Map{"message": msg})
	}
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// a malformed id cannot name an existing record
		return uuid.Nil, services.ErrNotFound
	}
	return id, nil
}

func registerAdminRoutes(api *echo.Group, h *adminHandler, gate, limit echo.MiddlewareFunc) {
	g := api.Group("/admin")

	// public
	g.POST("/login", h.login, limit)

	// the cookie is cleared before the gate runs, so logout drops it even
	// when the session cannot be loaded
	g.POST("/logout", h.logout, middleware.EndSession(middleware.AdminCookieName, h.secure), gate)

	// everything below requires an admin session
	g.Use(gate)
	g.GET("/profile", h.profile)
	g.PUT("/profile", h.updateProfile)
	g.POST("/change-password", h.changePassword)
	g.GET("/verify-token", h.verifyToken)

	superAdmin := middleware.RequireRole(model.RoleSuperAdmin)
	g.POST("/register", h.register, superAdmin, limit)
	g.GET("/studio-users", h.listStudioUsers, superAdmin)
	g.GET("/studio-users/:id", h.getStudioUser, superAdmin)
	g.POST("/studio-users/:id/deactivate", h.setStudioUserActive(false), superAdmin)
	g.POST("/studio-users/:id/activate", h.setStudioUserActive(true), superAdmin)
}
