package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/service"
	"github.com/kirinyoku/eventix/internal/service/booking"
	"github.com/kirinyoku/eventix/internal/service/events"
	"github.com/kirinyoku/eventix/internal/service/rating"
)

func NewRouter(
	svcs *service.Services,
	jwtSecret string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthRequired(jwtSecret)
	api := r.Group("/api")

	// Public reads
	api.GET("/events", handleListEvents(svcs))
	api.GET("/events/:id", handleGetEvent(svcs))
	api.GET("/tags", handleListTags(svcs))

	// Authenticated surface
	api.POST("/events", auth, handleCreateEvent(svcs))
	api.PATCH("/events/:id", auth, handleUpdateEvent(svcs))
	api.DELETE("/events/:id", auth, handleDeleteEvent(svcs))
	api.POST("/events/:id/book", auth, handleBook(svcs))
	api.POST("/events/:id/cancel_booking", auth, handleCancelBooking(svcs))
	api.POST("/events/:id/rate", auth, handleRate(svcs))
	api.GET("/events/my_upcoming", auth, handleMyUpcoming(svcs))
	api.POST("/tags", auth, handleCreateTag(svcs))
	api.GET("/notifications", auth, handleListNotifications(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List events
// @Param    location       query  string  false  "exact location, case-insensitive"
// @Param    status         query  string  false  "upcoming|cancelled|finished"
// @Param    start_time     query  string  false  "date (2006-01-02)"
// @Param    tag            query  string  false  "tag name substring"
// @Param    free_seats     query  bool    false  "only events with free seats"
// @Param    avg_rating__gte query float   false  "minimum average rating"
// @Param    avg_rating__lte query float   false  "maximum average rating"
// @Param    search         query  string  false  "free text over title/description/tags"
// @Success  200  {array}   domain.EventSummary
// @Router   /api/events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := parseEventFilter(c)
		if !ok {
			return
		}

		out, err := svcs.Events.List(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}
		if out == nil {
			out = []domain.EventSummary{}
		}
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=15", true)
	}
}

// @Summary  Get event with derived free_seats/avg_rating
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.EventSummary
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Events.Get(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=30", true)
	}
}

// @Summary  Create event
// @Param    req body  EventRequest true "payload"
// @Success  201 {object} domain.Event
// @Failure  400 {object} ErrorResponse
// @Router   /api/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}

		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		e, err := req.toDomain(0, domain.EventUpcoming)
		if err != nil {
			badRequest(c, "invalid start_time (RFC3339)")
			return
		}

		created, err := svcs.Events.Create(c.Request.Context(), userID, e, req.TagIDs)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// @Summary  Update event (organizer only, partial body; upcoming events only)
// @Param    id  path  int  true  "Event ID"
// @Param    req body  EventPatchRequest true "payload"
// @Success  200 {object} domain.Event
// @Failure  403 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "event is finished or cancelled"
// @Router   /api/events/{id} [patch]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req EventPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := req.toPatch()
		if err != nil {
			badRequest(c, "invalid start_time (RFC3339)")
			return
		}

		updated, err := svcs.Events.Update(c.Request.Context(), userID, eventID, p, req.TagIDs)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// @Summary  Delete event (organizer, within 1h of creation)
// @Param    id  path  int  true  "Event ID"
// @Success  204
// @Failure  403 {object} ErrorResponse
// @Router   /api/events/{id} [delete]
func handleDeleteEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		if err := svcs.Events.Delete(c.Request.Context(), userID, eventID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Book a seat
// @Param    id  path  int  true  "Event ID"
// @Success  201 {object} BookResponse
// @Failure  400 {object} ErrorResponse "not open / no seats / already registered"
// @Failure  404 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /api/events/{id}/book [post]
func handleBook(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		b, message, err := svcs.Booking.Reserve(c.Request.Context(), userID, eventID, "ip:"+c.ClientIP())
		if err != nil {
			if errors.Is(err, booking.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, BookResponse{
			BookingID: b.ID,
			BookedAt:  b.BookedAt,
			Message:   message,
		})
	}
}

// @Summary  Cancel a booking
// @Param    id  path  int  true  "Event ID"
// @Success  200 {object} CancelResponse
// @Failure  400 {object} ErrorResponse "not registered"
// @Failure  404 {object} ErrorResponse
// @Router   /api/events/{id}/cancel_booking [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		if err := svcs.Booking.Cancel(c.Request.Context(), userID, eventID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, CancelResponse{Status: "cancelled"})
	}
}

// @Summary  Rate an attended event
// @Param    id  path  int  true  "Event ID"
// @Param    req body  RateRequest true "payload"
// @Success  200 {object} domain.Rating
// @Failure  400 {object} ErrorResponse "too early / not an attendee / bad score"
// @Router   /api/events/{id}/rate [post]
func handleRate(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req RateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rt, err := svcs.Rating.Rate(c.Request.Context(), userID, eventID, req.Score)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, rt)
	}
}

// @Summary  Caller's upcoming booked events
// @Success  200 {array} domain.Event
// @Router   /api/events/my_upcoming [get]
func handleMyUpcoming(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}

		out, err := svcs.Events.MyUpcoming(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if out == nil {
			out = []domain.Event{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  List tags
// @Success  200 {array} domain.Tag
// @Router   /api/tags [get]
func handleListTags(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Events.ListTags(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		if out == nil {
			out = []domain.Tag{}
		}
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=60", true)
	}
}

// @Summary  Create tag
// @Param    req body  CreateTagRequest true "payload"
// @Success  201 {object} domain.Tag
// @Failure  409 {object} ErrorResponse
// @Router   /api/tags [post]
func handleCreateTag(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Events.CreateTag(c.Request.Context(), req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// @Summary  Caller's notification log
// @Param    limit  query  int  false "page size"
// @Param    offset query  int  false "offset"
// @Success  200 {array} domain.Notification
// @Router   /api/notifications [get]
func handleListNotifications(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}

		limit := parseIntDefault(c.Query("limit"), 50)
		offset := parseIntDefault(c.Query("offset"), 0)

		out, err := svcs.Notification.ListForUser(c.Request.Context(), userID, limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		if out == nil {
			out = []domain.Notification{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// --- Helpers ---

func parseEventFilter(c *gin.Context) (domain.EventFilter, bool) {
	f := domain.EventFilter{
		Location: c.Query("location"),
		Status:   c.Query("status"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Limit:    parseIntDefault(c.Query("limit"), 100),
		Offset:   parseIntDefault(c.Query("offset"), 0),
	}

	if s := c.Query("start_time"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			badRequest(c, "invalid start_time (expected 2006-01-02)")
			return f, false
		}
		f.StartDate = &d
	}

	if s := c.Query("free_seats"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			badRequest(c, "invalid free_seats")
			return f, false
		}
		f.OnlyFree = v
	}

	for q, dst := range map[string]**float64{
		"avg_rating__gte": &f.AvgRatingGTE,
		"avg_rating__lte": &f.AvgRatingLTE,
	} {
		if s := c.Query(q); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				badRequest(c, "invalid "+q)
				return f, false
			}
			*dst = &v
		}
	}

	return f, true
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// events service
	case errors.Is(err, events.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, events.ErrNotOrganizer):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the organizer may modify the event"})
		return
	case errors.Is(err, events.ErrEventNotEditable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "cannot modify a finished or cancelled event"})
		return
	case errors.Is(err, events.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status can only be changed to cancelled"})
		return
	case errors.Is(err, events.ErrDeletionWindow):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "deletion is only possible within 1 hour of creation"})
		return
	case errors.Is(err, events.ErrTagConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "tag already exists"})
		return
	// booking service
	case errors.Is(err, booking.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, booking.ErrEventNotOpen):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot book past or cancelled events"})
		return
	case errors.Is(err, booking.ErrNoFreeSeats):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no free seats"})
		return
	case errors.Is(err, booking.ErrAlreadyBooked):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "already registered"})
		return
	case errors.Is(err, booking.ErrNotRegistered):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "you were not registered"})
		return
	// rating service
	case errors.Is(err, rating.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, rating.ErrNotStarted):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rating is only possible after the event"})
		return
	case errors.Is(err, rating.ErrNotAttendee):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "you did not attend the event"})
		return
	case errors.Is(err, rating.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "score must be between 1 and 5"})
		return
	}

	// unexpected failures leak nothing
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
