package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
	"github.com/Astemirdum/library-borrowing/pkg/auth"
)

// Register godoc
// @Summary  Register a member
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body model.RegisterRequest true "member"
// @Success  201 {object} response
// @Failure  400 {object} errorResponse
// @Router   /auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	sess, err := h.librarySvc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	c.SetCookie(auth.NewCookie(sess.Token, h.opts.SecureCookie))
	return success(c, http.StatusCreated, "Registered successfully", sess)
}

// Login godoc
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body model.LoginRequest true "credentials"
// @Success  201 {object} response
// @Failure  400,401 {object} errorResponse
// @Router   /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	sess, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	c.SetCookie(auth.NewCookie(sess.Token, h.opts.SecureCookie))
	return success(c, http.StatusCreated, "Logged in successfully", sess)
}

func (h *Handler) Logout(c echo.Context) error {
	token := auth.TokenFromRequest(c.Request())
	if err := h.librarySvc.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	c.SetCookie(auth.ExpiredCookie(h.opts.SecureCookie))
	return success(c, http.StatusCreated, "Logged out successfully", nil)
}

func (h *Handler) GetUser(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	user, err := h.librarySvc.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Invalid token")
		}
		return err
	}
	return success(c, http.StatusOK, "User found", echo.Map{"user": user})
}

func (h *Handler) TotalUsers(c echo.Context) error {
	total, err := h.librarySvc.TotalUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Total users found", echo.Map{"totalUsers": total})
}

// ListUsers godoc
// @Summary  List members with their borrowings
// @Tags     auth
// @Produce  json
// @Param    search query string false "name or email fragment"
// @Param    page   query int    false "page"
// @Param    limit  query int    false "page size"
// @Success  200 {object} response
// @Router   /auth/get-all-users [get]
func (h *Handler) ListUsers(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return err
	}
	users, err := h.librarySvc.ListUsers(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return successPage(c, "User Found", echo.Map{"users": users.Users}, users.Pagination)
}
