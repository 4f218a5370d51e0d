package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

// ListBooks godoc
// @Summary  Search the catalog
// @Tags     books
// @Produce  json
// @Param    search query string false "title, author or isbn fragment"
// @Param    page   query int    false "page"
// @Param    limit  query int    false "page size"
// @Success  200 {object} response
// @Failure  400 {object} errorResponse
// @Router   /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	p, err := pageRequest(c)
	if err != nil {
		return err
	}
	books, err := h.librarySvc.ListBooks(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return successPage(c, "Books found", echo.Map{"books": books.Books}, books.Pagination)
}

// AddBook godoc
// @Summary  Add a book
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    input body model.AddBookRequest true "book"
// @Success  201 {object} response
// @Failure  400 {object} errorResponse
// @Router   /books/add [post]
func (h *Handler) AddBook(c echo.Context) error {
	var req model.AddBookRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	book, err := h.librarySvc.AddBook(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Book added successfully", echo.Map{"book": book})
}

// UpdateBook godoc
// @Summary  Edit a book and add copies
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    id    path string                  true "book id"
// @Param    input body model.UpdateBookRequest true "book"
// @Success  201 {object} response
// @Failure  400 {object} errorResponse
// @Router   /books/update/{id} [post]
func (h *Handler) UpdateBook(c echo.Context) error {
	var req model.UpdateBookRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	book, err := h.librarySvc.UpdateBook(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Book updated successfully", echo.Map{"book": book})
}

func (h *Handler) DeleteBook(c echo.Context) error {
	if err := h.librarySvc.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusCreated, "Book deleted successfully", nil)
}

func (h *Handler) TotalBooks(c echo.Context) error {
	total, err := h.librarySvc.TotalBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "Total books found", echo.Map{"totalBooks": total})
}
