package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/services"
	"github.com/bookwise/backend/internal/types"
)

type BookHandler struct {
	log          *logger.Logger
	bookService  services.BookService
	interactions services.InteractionService
}

func NewBookHandler(baseLog *logger.Logger, bookService services.BookService, interactions services.InteractionService) *BookHandler {
	return &BookHandler{
		log:          baseLog.With("handler", "BookHandler"),
		bookService:  bookService,
		interactions: interactions,
	}
}

type createBookRequest struct {
	ISBN              string `json:"isbn" binding:"required"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	YearOfPublication *int   `json:"year_of_publication"`
	Publisher         string `json:"publisher"`
	ImageURLS         string `json:"image_url_s"`
	ImageURLM         string `json:"image_url_m"`
	ImageURLL         string `json:"image_url_l"`
}

// GET /api/books?limit=&offset=
func (h *BookHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	books, total, err := h.bookService.List(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "LIST_FAILED", err)
		return
	}
	RespondOK(c, gin.H{"books": books, "total": total})
}

// GET /api/books/:isbn
func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.bookService.Get(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "GET_FAILED", err)
		return
	}
	if book == nil {
		RespondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", errors.New("no book with that isbn"))
		return
	}
	RespondOK(c, book)
}

// GET /api/books/search?q=&limit=
func (h *BookHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_QUERY", errors.New("query parameter q is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	books, err := h.bookService.Search(c.Request.Context(), query, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "SEARCH_FAILED", err)
		return
	}
	if books == nil {
		books = []*types.Book{}
	}
	RespondOK(c, books)
}

// POST /api/books
//
// Creation is idempotent on ISBN: an existing row wins and provided
// fields are kept for the first sighting only.
func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", err)
		return
	}
	book, created, err := h.interactions.EnsureBook(c.Request.Context(), &types.Book{
		ISBN:              req.ISBN,
		Title:             req.Title,
		Author:            req.Author,
		YearOfPublication: req.YearOfPublication,
		Publisher:         req.Publisher,
		ImageURLS:         req.ImageURLS,
		ImageURLM:         req.ImageURLM,
		ImageURLL:         req.ImageURLL,
	})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "CREATE_FAILED", err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, book)
		return
	}
	RespondOK(c, book)
}

// DELETE /api/books/:isbn
//
// Books stay around because rating rows and model item indices refer to
// them. The route exists so clients get an explicit answer rather than
// a 404.
func (h *BookHandler) Delete(c *gin.Context) {
	RespondError(c, http.StatusForbidden, "DELETION_FORBIDDEN", errors.New("deletion of books is not allowed"))
}
