package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"booking-service/data"
	error2 "booking-service/error"
	"booking-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
	validate            *validator.Validate
	Tracer              trace.Tracer
}

func NewAvailabilityHandler(availabilityService services.AvailabilityService, tr trace.Tracer) AvailabilityHandler {
	return AvailabilityHandler{
		availabilityService: availabilityService,
		validate:            validator.New(),
		Tracer:              tr,
	}
}

func (s *AvailabilityHandler) CreateAvailability(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.CreateAvailability")
	defer span.End()

	var create data.CreateAvailability
	if err := c.BindJSON(&create); err != nil {
		span.SetStatus(codes.Error, "Invalid request body. Check the request format.")
		error2.ReturnJSONError(c, "Invalid request body. Check the request format.", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(&create); err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, err.Error(), http.StatusBadRequest)
		return
	}

	availability, err := s.availabilityService.InsertAvailability(&create, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Availability created")
	error2.ReturnJSON(c, http.StatusCreated, availability, "Availability created")
}

func (s *AvailabilityHandler) CreateAvailabilityRange(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.CreateAvailabilityRange")
	defer span.End()

	var period data.CreateAvailabilityRange
	if err := c.BindJSON(&period); err != nil {
		span.SetStatus(codes.Error, "Invalid request body. Check the request format.")
		error2.ReturnJSONError(c, "Invalid request body. Check the request format.", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(&period); err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, err.Error(), http.StatusBadRequest)
		return
	}

	availabilities, err := s.availabilityService.InsertMultipleAvailability(&period, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Availability range created")
	error2.ReturnJSON(c, http.StatusCreated, availabilities, "Availability range created")
}

func (s *AvailabilityHandler) GetAvailabilityByRoom(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.GetAvailabilityByRoom")
	defer span.End()

	roomID := c.Param("roomId")
	startDate, err := parseDateQuery(c, "startDate")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, "Invalid startDate. Use YYYY-MM-DD.", http.StatusBadRequest)
		return
	}
	endDate, err := parseDateQuery(c, "endDate")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, "Invalid endDate. Use YYYY-MM-DD.", http.StatusBadRequest)
		return
	}

	availabilities, err := s.availabilityService.GetAvailabilityByRoom(roomID, startDate, endDate, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Get availability by room successful")
	error2.ReturnJSON(c, http.StatusOK, availabilities, "")
}

func (s *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.CheckAvailability")
	defer span.End()

	var check data.CheckAvailability
	if err := c.BindJSON(&check); err != nil {
		span.SetStatus(codes.Error, "Invalid request body. Check the request format.")
		error2.ReturnJSONError(c, "Invalid request body. Check the request format.", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(&check); err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, err.Error(), http.StatusBadRequest)
		return
	}

	// A reservation holds one unit per night regardless of party size, so
	// the check demands one unit; guests is informational.
	result, err := s.availabilityService.CheckAvailability(check.RoomID, check.CheckInDate, check.CheckOutDate, 1, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Availability check successful")
	error2.ReturnJSON(c, http.StatusOK, result, "")
}

func (s *AvailabilityHandler) ReduceAvailability(c *gin.Context) {
	s.mutateAvailability(c, "AvailabilityHandler.ReduceAvailability", s.availabilityService.ReduceAvailability)
}

func (s *AvailabilityHandler) RestoreAvailability(c *gin.Context) {
	s.mutateAvailability(c, "AvailabilityHandler.RestoreAvailability", s.availabilityService.RestoreAvailability)
}

func (s *AvailabilityHandler) mutateAvailability(c *gin.Context, spanName string,
	mutate func(string, time.Time, int, context.Context) (*data.Availability, error)) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	roomID := c.Param("roomId")
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, "Invalid date. Use YYYY-MM-DD.", http.StatusBadRequest)
		return
	}
	quantity := 1
	if raw := c.Query("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			span.SetStatus(codes.Error, "Invalid quantity")
			error2.ReturnJSONError(c, "Invalid quantity", http.StatusBadRequest)
			return
		}
	}

	availability, err := mutate(roomID, date, quantity, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Availability updated")
	error2.ReturnJSON(c, http.StatusOK, availability, "")
}

func (s *AvailabilityHandler) UpdateAvailability(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.UpdateAvailability")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, "Invalid availability id", http.StatusBadRequest)
		return
	}

	var update data.UpdateAvailability
	if err := c.BindJSON(&update); err != nil {
		span.SetStatus(codes.Error, "Invalid request body. Check the request format.")
		error2.ReturnJSONError(c, "Invalid request body. Check the request format.", http.StatusBadRequest)
		return
	}

	availability, err := s.availabilityService.UpdateAvailability(id, &update, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Availability updated")
	error2.ReturnJSON(c, http.StatusOK, availability, "")
}

func (s *AvailabilityHandler) DeleteAvailability(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.DeleteAvailability")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnJSONError(c, "Invalid availability id", http.StatusBadRequest)
		return
	}

	if err := s.availabilityService.DeleteAvailability(id, spanCtx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Availability deleted")
	error2.ReturnJSON(c, http.StatusOK, nil, "Availability deleted")
}

func parseDateQuery(c *gin.Context, name string) (time.Time, error) {
	return time.Parse("2006-01-02", c.Query(name))
}
