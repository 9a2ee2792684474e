package order

type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusShipped        Status = "shipped"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

// No cyclic transitions once paid.
var validNext = map[Status]map[Status]bool{
	StatusPending:        {StatusPendingPayment: true, StatusCancelled: true},
	StatusPendingPayment: {StatusPaid: true, StatusPendingPayment: true},
	StatusPaid:           {StatusShipped: true, StatusRefunded: true},
	StatusShipped:        {StatusRefunded: true},
	StatusCancelled:      {},
	StatusRefunded:       {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)
