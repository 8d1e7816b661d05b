package reservation

// Reservation statuses as used by the vendor.
const (
	StatusInquiry   = "inquiry"
	StatusReserved  = "reserved"
	StatusConfirmed = "confirmed"
	StatusCanceled  = "canceled"
	StatusDeclined  = "declined"
	StatusExpired   = "expired"
	StatusClosed    = "closed"
)

// statusRank orders the forward path of a locally driven booking.
var statusRank = map[string]int{
	StatusInquiry:   0,
	StatusReserved:  1,
	StatusConfirmed: 2,
}

// terminal statuses end a reservation regardless of where it stood.
var terminal = map[string]bool{
	StatusCanceled: true,
	StatusDeclined: true,
	StatusExpired:  true,
	StatusClosed:   true,
}

// CanTransition reports whether a locally driven booking may move from one
// status to another. The forward path only ever advances; closed marks an
// inquiry the vendor shut without a stay, so it is reachable from inquiry
// alone, while the other terminal statuses end any non-terminal booking.
// Remote-originated updates bypass this check, the vendor owns those.
func CanTransition(from, to string) bool {
	if terminal[from] {
		return false
	}
	if to == StatusClosed {
		return from == StatusInquiry
	}
	if terminal[to] {
		return true
	}

	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
