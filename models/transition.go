package models

// Tabel transisi per channel. Key = status asal, value = status tujuan yang sah.
var deliveryTransitions = map[string][]string{
	StatusWaitingPayment:    {StatusPaid, StatusCancelled},
	StatusPaid:              {StatusPreparing, StatusCancelled},
	StatusPreparing:         {StatusWaitingForShipper, StatusCancelled},
	StatusWaitingForShipper: {StatusDelivering, StatusCancelled},
	StatusDelivering:        {StatusDelivered, StatusCancelled},
}

var dineInTransitions = map[string][]string{
	StatusNew:        {StatusInProgress},
	StatusInProgress: {StatusReady},
	StatusReady:      {StatusServed},
}

var takeawayTransitions = map[string][]string{
	StatusPending: {StatusPaid},
	StatusPaid:    {StatusReady},
	StatusReady:   {StatusCompleted},
}

// Lifecycle rank per channel, dipakai untuk mencegah status mundur saat merge.
var deliveryRank = map[string]int{
	StatusWaitingPayment:    1,
	StatusPaid:              2,
	StatusPreparing:         3,
	StatusWaitingForShipper: 4,
	StatusDelivering:        5,
	StatusDelivered:         6,
	StatusCancelled:         6,
}

var dineInRank = map[string]int{
	StatusNew:        1,
	StatusInProgress: 2,
	StatusReady:      3,
	StatusServed:     4,
	StatusPaid:       5,
	StatusCompleted:  6,
	StatusCancelled:  6,
}

var takeawayRank = map[string]int{
	StatusPending:   1,
	StatusPaid:      2,
	StatusReady:     3,
	StatusCompleted: 4,
	StatusCancelled: 4,
}

func transitionTable(orderType string) map[string][]string {
	switch orderType {
	case OrderTypeDelivery:
		return deliveryTransitions
	case OrderTypeTakeaway:
		return takeawayTransitions
	default:
		return dineInTransitions
	}
}

func rankTable(orderType string) map[string]int {
	switch orderType {
	case OrderTypeDelivery:
		return deliveryRank
	case OrderTypeTakeaway:
		return takeawayRank
	default:
		return dineInRank
	}
}

// CanTransition -> cek apakah transisi status sah untuk channel order
func CanTransition(orderType, from, to string) bool {
	for _, next := range transitionTable(orderType)[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LifecycleRank mengembalikan posisi status dalam lifecycle channel.
// Status yang tidak dikenal mendapat rank 0 sehingga tidak pernah menang merge.
func LifecycleRank(orderType, status string) int {
	return rankTable(orderType)[status]
}
