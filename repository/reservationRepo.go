package repository

import (
	"fmt"

	"booking-service/data"
	"booking-service/domain"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// ReservationStore abstracts the reservation rows. The room-scoped listing
// exists for the overlap fallback scan; everything else is lifecycle CRUD.
type ReservationStore interface {
	Insert(reservation *data.Reservation) error
	GetByID(id gocql.UUID) (*data.Reservation, error)
	GetByRoom(roomID string) (data.Reservations, error)
	GetByCustomer(customerID string) (data.Reservations, error)
	UpdateStatus(roomID string, id gocql.UUID, status data.ReservationStatus, reason string) error
	UpdateDetails(reservation *data.Reservation) error
}

// ReservationRepo encapsulates the Cassandra client. Reservations are
// partitioned by room so the conflict scan reads a single partition.
type ReservationRepo struct {
	session *gocql.Session
	logger  *logrus.Logger
}

func NewReservationRepo(host string, logger *logrus.Logger) (*ReservationRepo, error) {
	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	err = session.Query(
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
					WITH replication = {
						'class' : 'SimpleStrategy',
						'replication_factor' : %d
					}`, "reservation", 1)).Exec()
	if err != nil {
		logger.Error(err)
	}
	session.Close()

	cluster.Keyspace = "reservation"
	cluster.Consistency = gocql.Quorum
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Error(err)
		return nil, err
	}

	return &ReservationRepo{
		session: session,
		logger:  logger,
	}, nil
}

func (rr *ReservationRepo) CloseSession() {
	rr.session.Close()
}

func (rr *ReservationRepo) CreateTable() {
	err := rr.session.Query(
		`CREATE TABLE IF NOT EXISTS reservations_by_room (
        room_id text,
        reservation_id timeuuid,
        customer_id text,
        hotel_id text,
        check_in_date timestamp,
        check_out_date timestamp,
        guest_count int,
        status text,
        total_amount double,
        currency text,
        special_requests text,
        cancellation_reason text,
        created_at timestamp,
        PRIMARY KEY ((room_id), reservation_id)
    ) WITH CLUSTERING ORDER BY (reservation_id ASC);`,
	).Exec()
	if err != nil {
		rr.logger.Error(err)
	}

	err = rr.session.Query(
		`CREATE INDEX IF NOT EXISTS idx_reservation_id ON reservations_by_room (reservation_id);`,
	).Exec()
	if err != nil {
		rr.logger.Error(err)
	}

	err = rr.session.Query(
		`CREATE INDEX IF NOT EXISTS idx_customer_id ON reservations_by_room (customer_id);`,
	).Exec()
	if err != nil {
		rr.logger.Error(err)
	}
}

const reservationColumns = `room_id, reservation_id, customer_id, hotel_id,
       check_in_date, check_out_date, guest_count, status, total_amount,
       currency, special_requests, cancellation_reason, created_at`

func (rr *ReservationRepo) Insert(reservation *data.Reservation) error {
	err := rr.session.Query(
		`INSERT INTO reservations_by_room
         (`+reservationColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reservation.RoomID,
		reservation.ReservationID,
		reservation.CustomerID,
		reservation.HotelID,
		reservation.CheckInDate,
		reservation.CheckOutDate,
		reservation.GuestCount,
		string(reservation.Status),
		reservation.TotalAmount,
		reservation.Currency,
		reservation.SpecialRequests,
		reservation.CancellationReason,
		reservation.CreatedAt,
	).Exec()
	if err != nil {
		rr.logger.Error(err)
	}
	return err
}

func (rr *ReservationRepo) GetByID(id gocql.UUID) (*data.Reservation, error) {
	var rsv data.Reservation
	var status string
	err := rr.session.Query(
		`SELECT `+reservationColumns+`
         FROM reservations_by_room WHERE reservation_id = ? ALLOW FILTERING`,
		id,
	).Scan(&rsv.RoomID, &rsv.ReservationID, &rsv.CustomerID, &rsv.HotelID,
		&rsv.CheckInDate, &rsv.CheckOutDate, &rsv.GuestCount, &status,
		&rsv.TotalAmount, &rsv.Currency, &rsv.SpecialRequests,
		&rsv.CancellationReason, &rsv.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		rr.logger.Error(err)
		return nil, err
	}
	rsv.Status = data.ReservationStatus(status)
	return &rsv, nil
}

func (rr *ReservationRepo) GetByRoom(roomID string) (data.Reservations, error) {
	return rr.scanReservations(
		`SELECT `+reservationColumns+`
         FROM reservations_by_room WHERE room_id = ?`, roomID)
}

func (rr *ReservationRepo) GetByCustomer(customerID string) (data.Reservations, error) {
	return rr.scanReservations(
		`SELECT `+reservationColumns+`
         FROM reservations_by_room WHERE customer_id = ? ALLOW FILTERING`, customerID)
}

func (rr *ReservationRepo) scanReservations(stmt string, value interface{}) (data.Reservations, error) {
	scanner := rr.session.Query(stmt, value).Iter().Scanner()

	var reservations data.Reservations
	for scanner.Next() {
		var rsv data.Reservation
		var status string
		err := scanner.Scan(&rsv.RoomID, &rsv.ReservationID, &rsv.CustomerID,
			&rsv.HotelID, &rsv.CheckInDate, &rsv.CheckOutDate, &rsv.GuestCount,
			&status, &rsv.TotalAmount, &rsv.Currency, &rsv.SpecialRequests,
			&rsv.CancellationReason, &rsv.CreatedAt)
		if err != nil {
			rr.logger.Error(err)
			return nil, err
		}
		rsv.Status = data.ReservationStatus(status)
		reservations = append(reservations, &rsv)
	}
	if err := scanner.Err(); err != nil {
		rr.logger.Error(err)
		return nil, err
	}
	return reservations, nil
}

func (rr *ReservationRepo) UpdateStatus(roomID string, id gocql.UUID, status data.ReservationStatus, reason string) error {
	err := rr.session.Query(
		`UPDATE reservations_by_room
         SET status = ?, cancellation_reason = ?
         WHERE room_id = ? AND reservation_id = ?`,
		string(status), reason, roomID, id,
	).Exec()
	if err != nil {
		rr.logger.Error(err)
	}
	return err
}

func (rr *ReservationRepo) UpdateDetails(reservation *data.Reservation) error {
	err := rr.session.Query(
		`UPDATE reservations_by_room
         SET check_in_date = ?, check_out_date = ?, guest_count = ?,
             special_requests = ?, total_amount = ?
         WHERE room_id = ? AND reservation_id = ?`,
		reservation.CheckInDate,
		reservation.CheckOutDate,
		reservation.GuestCount,
		reservation.SpecialRequests,
		reservation.TotalAmount,
		reservation.RoomID,
		reservation.ReservationID,
	).Exec()
	if err != nil {
		rr.logger.Error(err)
	}
	return err
}
