package models

// Status meja yang di-set staff secara eksplisit
const (
	TableAvailable = "AVAILABLE"
	TableOccupied  = "OCCUPIED"
	TableReserved  = "RESERVED"
	TableCleaning  = "CLEANING"
)

type Table struct {
	ID          uint    `json:"id"`
	TableNumber string  `json:"number"`
	Capacity    int     `json:"capacity"`
	Location    string  `json:"location,omitempty"`
	Status      string  `json:"status"`
	Orders      []Order `json:"orders"`

	// Version dipakai store untuk merge antar sumber (unix millis)
	Version int64 `json:"-"`
}
