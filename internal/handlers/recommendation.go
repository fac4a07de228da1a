package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/requestdata"
	"github.com/bookwise/backend/internal/services"
	"github.com/bookwise/backend/internal/types"
)

type RecommendationHandler struct {
	log         *logger.Logger
	recommender services.RecommenderService
	bookService services.BookService
}

func NewRecommendationHandler(baseLog *logger.Logger, recommender services.RecommenderService, bookService services.BookService) *RecommendationHandler {
	return &RecommendationHandler{
		log:         baseLog.With("handler", "RecommendationHandler"),
		recommender: recommender,
		bookService: bookService,
	}
}

type recommendedBook struct {
	*types.Book
	CoverURL string `json:"cover_url"`
}

type recommendationResponse struct {
	UserID string            `json:"user_id"`
	Books  []recommendedBook `json:"books"`
	ISBNs  []string          `json:"isbns"`
}

// GET /api/recommendations?top_k=
func (h *RecommendationHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", nil)
		return
	}
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "0"))

	userKey := rd.UserID.String()
	isbns, err := h.recommender.Recommend(c.Request.Context(), userKey, topK)
	if err != nil {
		if errors.Is(err, services.ErrModelNotReady) {
			RespondError(c, http.StatusServiceUnavailable, "MODEL_NOT_READY", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "RECOMMEND_FAILED", err)
		return
	}

	books := make([]recommendedBook, 0, len(isbns))
	for _, isbn := range isbns {
		book, err := h.bookService.Get(c.Request.Context(), isbn)
		if err != nil {
			h.log.Warn("Failed to load recommended book", "isbn", isbn, "error", err)
			continue
		}
		if book != nil {
			books = append(books, recommendedBook{Book: book, CoverURL: book.CoverURL()})
		}
	}

	RespondOK(c, recommendationResponse{
		UserID: userKey,
		Books:  books,
		ISBNs:  isbns,
	})
}
