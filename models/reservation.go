package models

type ReservationSource string

const (
	SourceBooking ReservationSource = "預訂"
	SourceWalkIn  ReservationSource = "現場"
)

func (s ReservationSource) Valid() bool {
	return s == SourceBooking || s == SourceWalkIn
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "待入座"
	ReservationSeated    ReservationStatus = "已入座"
	ReservationCancelled ReservationStatus = "已取消"
)

// Reservation 订位. CheckInTime is epoch milliseconds and only set once the
// reservation has been seated.
type Reservation struct {
	ID          string            `json:"id"`
	ShopID      string            `json:"shopId"`
	TableNo     string            `json:"tableNo"`
	Time        string            `json:"time"`
	Phone       string            `json:"phone"`
	Source      ReservationSource `json:"source"`
	Status      ReservationStatus `json:"status"`
	CheckInTime *int64            `json:"checkInTime,omitempty"`
}

func (r Reservation) GetID() string { return r.ID }

type CreateReservationInput struct {
	ShopID  string            `json:"shopId"`
	TableNo string            `json:"tableNo"`
	Time    string            `json:"time"`
	Phone   string            `json:"phone"`
	Source  ReservationSource `json:"source"`
	Status  ReservationStatus `json:"status"`
}
