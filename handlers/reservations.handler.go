package handlers

import (
	"net/http"

	"booking-service/data"
	error2 "booking-service/error"
	"booking-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ReservationsHandler struct {
	reservationService services.ReservationService
	validate           *validator.Validate
	Tracer             trace.Tracer
}

func NewReservationsHandler(reservationService services.ReservationService, tr trace.Tracer) ReservationsHandler {
	return ReservationsHandler{
		reservationService: reservationService,
		validate:           validator.New(),
		Tracer:             tr,
	}
}

func (s *ReservationsHandler) CreateReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.CreateReservation")
	defer span.End()

	auth := authFromContext(c)
	if !auth.IsGuest() {
		span.SetStatus(codes.Error, "Permission denied. Only guests can create reservations.")
		error2.ReturnJSONError(c, "Permission denied. Only guests can create reservations.", http.StatusForbidden)
		return
	}

	var create data.CreateReservation
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

	reservation, err := s.reservationService.CreateReservation(auth, &create, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Reservation created")
	error2.ReturnJSON(c, http.StatusCreated, reservation, "Reservation created")
}

func (s *ReservationsHandler) GetReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.GetReservation")
	defer span.End()

	reservation, err := s.reservationService.GetReservation(c.Param("id"), spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Get reservation successful")
	error2.ReturnJSON(c, http.StatusOK, reservation, "")
}

func (s *ReservationsHandler) GetReservationsForCaller(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.GetReservationsForCaller")
	defer span.End()

	auth := authFromContext(c)
	reservations, err := s.reservationService.GetReservationsByCustomer(auth.UserID, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Get reservations successful")
	error2.ReturnJSON(c, http.StatusOK, reservations, "")
}

func (s *ReservationsHandler) GetReservationsByRoom(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.GetReservationsByRoom")
	defer span.End()

	reservations, err := s.reservationService.GetReservationsByRoom(c.Param("roomId"), spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Get reservations by room successful")
	error2.ReturnJSON(c, http.StatusOK, reservations, "")
}

func (s *ReservationsHandler) ConfirmReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.ConfirmReservation")
	defer span.End()

	auth := authFromContext(c)
	if !auth.IsHost() {
		span.SetStatus(codes.Error, "Permission denied. Only hosts can confirm reservations.")
		error2.ReturnJSONError(c, "Permission denied. Only hosts can confirm reservations.", http.StatusForbidden)
		return
	}

	reservation, err := s.reservationService.ConfirmReservation(auth, c.Param("id"), spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Reservation confirmed")
	error2.ReturnJSON(c, http.StatusOK, reservation, "Reservation confirmed")
}

func (s *ReservationsHandler) RejectReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.RejectReservation")
	defer span.End()

	auth := authFromContext(c)
	if !auth.IsHost() {
		span.SetStatus(codes.Error, "Permission denied. Only hosts can reject reservations.")
		error2.ReturnJSONError(c, "Permission denied. Only hosts can reject reservations.", http.StatusForbidden)
		return
	}

	var body data.CancelReservation
	_ = c.BindJSON(&body)

	reservation, err := s.reservationService.RejectReservation(auth, c.Param("id"), body.Reason, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Reservation rejected")
	error2.ReturnJSON(c, http.StatusOK, reservation, "Reservation rejected")
}

func (s *ReservationsHandler) CancelReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.CancelReservation")
	defer span.End()

	var body data.CancelReservation
	_ = c.BindJSON(&body)

	reservation, err := s.reservationService.CancelReservation(authFromContext(c), c.Param("id"), body.Reason, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Reservation cancelled")
	error2.ReturnJSON(c, http.StatusOK, reservation, "Reservation cancelled")
}

func (s *ReservationsHandler) CompleteReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.CompleteReservation")
	defer span.End()

	auth := authFromContext(c)
	if !auth.IsHost() {
		span.SetStatus(codes.Error, "Permission denied. Only hosts can complete reservations.")
		error2.ReturnJSONError(c, "Permission denied. Only hosts can complete reservations.", http.StatusForbidden)
		return
	}

	reservation, err := s.reservationService.CompleteReservation(auth, c.Param("id"), spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Reservation completed")
	error2.ReturnJSON(c, http.StatusOK, reservation, "Reservation completed")
}

func (s *ReservationsHandler) UpdateReservation(c *gin.Context) {
	spanCtx, span := s.Tracer.Start(c.Request.Context(), "ReservationsHandler.UpdateReservation")
	defer span.End()

	var update data.UpdateReservation
	if err := c.BindJSON(&update); err != nil {
		span.SetStatus(codes.Error, "Invalid request body. Check the request format.")
		error2.ReturnJSONError(c, "Invalid request body. Check the request format.", http.StatusBadRequest)
		return
	}

	reservation, err := s.reservationService.UpdateReservation(authFromContext(c), c.Param("id"), &update, spanCtx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		error2.ReturnDomainError(c, err)
		return
	}
	span.SetStatus(codes.Ok, "Reservation updated")
	error2.ReturnJSON(c, http.StatusOK, reservation, "Reservation updated")
}
