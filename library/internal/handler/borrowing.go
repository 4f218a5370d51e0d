package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

// CreateBorrowing godoc
// @Summary  Borrow a book for the session user
// @Tags     borrowings
// @Accept   json
// @Produce  json
// @Param    input body model.CreateBorrowingRequest true "loan"
// @Success  201 {object} response
// @Failure  400 {object} errorResponse
// @Router   /borrowings/add [post]
func (h *Handler) CreateBorrowing(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	var req model.CreateBorrowingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	created, err := h.librarySvc.CreateBorrowing(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Borrowing added successfully", created)
}

// ReturnBorrowing godoc
// @Summary  Close the session user's open loan as RETURNED or LOST
// @Tags     borrowings
// @Accept   json
// @Produce  json
// @Param    input body model.ReturnBorrowingRequest true "return"
// @Success  201 {object} response
// @Failure  400 {object} errorResponse
// @Router   /borrowings/update [post]
func (h *Handler) ReturnBorrowing(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	var req model.ReturnBorrowingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	borrowing, err := h.librarySvc.ReturnBorrowing(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Borrowing updated successfully", echo.Map{"borrowing": borrowing})
}

func (h *Handler) ListBorrowings(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	books, err := h.librarySvc.ListBorrowings(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Borrowings found", echo.Map{"borrowedBooks": books})
}

func (h *Handler) TotalBorrowings(c echo.Context) error {
	total, err := h.librarySvc.TotalBorrowings(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Total borrowings found", echo.Map{"totalBorrowings": total})
}
