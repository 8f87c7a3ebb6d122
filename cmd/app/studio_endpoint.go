package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/services"
	"github.com/tankharsh/photocap/internal/validation"

	"github.com/labstack/echo/v4"
)

type studioRegisterRequest struct {
	Email               string   `json:"email" validate:"required,email"`
	Password            string   `json:"password" validate:"required,min=8,max=72,strongpassword"`
	FirstName           string   `json:"firstName" validate:"required,min=1,max=50"`
	LastName            string   `json:"lastName" validate:"required,min=1,max=50"`
	Phone               *string  `json:"phone" validate:"omitempty,phone"`
	DateOfBirth         *string  `json:"dateOfBirth" validate:"omitempty,date,min_age=13"`
	PhotographyType     *string  `json:"photographyType" validate:"omitempty,photography_type"`
	EventTypes          []string `json:"eventTypes" validate:"omitempty,dive,event_type"`
	Budget              *string  `json:"budget" validate:"omitempty,budget_range"`
	PreferredDate       *string  `json:"preferredDate" validate:"omitempty,date,not_past"`
	SubscribeNewsletter *bool    `json:"subscribeNewsletter"`
}

func (r studioRegisterRequest) registration() model.StudioRegistration {
	reg := model.StudioRegistration{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Phone:           r.Phone,
		DateOfBirth:     parseOptionalDate(r.DateOfBirth),
		PhotographyType: r.PhotographyType,
		EventTypes:      r.EventTypes,
		Budget:          r.Budget,
		PreferredDate:   parseOptionalDate(r.PreferredDate),
	}
	if r.SubscribeNewsletter != nil {
		reg.SubscribeNewsletter = *r.SubscribeNewsletter
	}
	return reg
}

type studioUpdateProfileRequest struct {
	FirstName           *string  `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName            *string  `json:"lastName" validate:"omitempty,min=1,max=50"`
	Phone               *string  `json:"phone" validate:"omitempty,phone"`
	DateOfBirth         *string  `json:"dateOfBirth" validate:"omitempty,date,min_age=13"`
	PhotographyType     *string  `json:"photographyType" validate:"omitempty,photography_type"`
	EventTypes          []string `json:"eventTypes" validate:"omitempty,dive,event_type"`
	Budget              *string  `json:"budget" validate:"omitempty,budget_range"`
	PreferredDate       *string  `json:"preferredDate" validate:"omitempty,date,not_past"`
	SubscribeNewsletter *bool    `json:"subscribeNewsletter"`
}

func (r studioUpdateProfileRequest) update() model.StudioProfileUpdate {
	return model.StudioProfileUpdate{
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Phone:               r.Phone,
		DateOfBirth:         parseOptionalDate(r.DateOfBirth),
		PhotographyType:     r.PhotographyType,
		EventTypes:          r.EventTypes,
		Budget:              r.Budget,
		PreferredDate:       parseOptionalDate(r.PreferredDate),
		SubscribeNewsletter: r.SubscribeNewsletter,
	}
}

// parseOptionalDate is only called on validated input.
func parseOptionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := validation.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}

type studioHandler struct {
	auth   *services.StudioAuthService
	verify *services.EmailVerificationService
	secure bool
	log    *slog.Logger
}

func (h *studioHandler) register(c echo.Context) error {
	var req studioRegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.registration())
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, middleware.StudioCookieName, session.Token, h.auth.TTL(), h.secure)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful, please check your email to verify your account",
		"token":   session.Token,
		"user":    session.Profile,
	})
}

func (h *studioHandler) login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, middleware.StudioCookieName, session.Token, h.auth.TTL(), h.secure)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   session.Token,
		"user":    session.Profile,
	})
}

func (h *studioHandler) logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context(), middleware.GetPrincipal(c))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *studioHandler) profile(c echo.Context) error {
	p, err := h.auth.GetProfile(c.Request().Context(), middleware.GetPrincipal(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile retrieved successfully",
		"user":    p,
	})
}

func (h *studioHandler) updateProfile(c echo.Context) error {
	var req studioUpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id := middleware.GetPrincipal(c).ID
	update := req.update()
	if update.Empty() {
		p, err := h.auth.GetProfile(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Nothing to update", "user": p})
	}

	p, err := h.auth.UpdateProfile(c.Request().Context(), id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    p,
	})
}

func (h *studioHandler) changePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.Request().Context(), middleware.GetPrincipal(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

func (h *studioHandler) checkAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User is authenticated",
		"user":    middleware.GetPrincipal(c),
	})
}

func registerStudioRoutes(api *echo.Group, h *studioHandler, events *eventHandler, clients *clientHandler, gate, limit echo.MiddlewareFunc) {
	g := api.Group("/studio")

	// public
	g.POST("/register", h.register, limit)
	g.POST("/login", h.login, limit)
	g.GET("/verify-email", verifyEmailHandler(h.verify))

	g.POST("/logout", h.logout, middleware.EndSession(middleware.StudioCookieName, h.secure), gate)

	// everything below requires a studio session
	g.Use(gate)
	g.GET("/profile", h.profile)
	g.PUT("/profile", h.updateProfile)
	g.POST("/change-password", h.changePassword)
	g.GET("/check-auth", h.checkAuth)

	g.GET("/events", events.list)
	g.GET("/events/:id", events.get)
	g.POST("/events", events.create)
	g.PUT("/events/:id", events.update)
	g.DELETE("/events/:id", events.delete)

	g.GET("/clients", clients.list)
}
