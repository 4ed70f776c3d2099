package order

type Status string

const (
	StatusRequested       Status = "requested"
	StatusFailedPayment   Status = "failed_payment"
	StatusPaid            Status = "paid"
	StatusPreparedProduct Status = "prepared_product"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCanceled        Status = "canceled"
)

var transitions = map[Status][]Status{
	StatusRequested:       {StatusFailedPayment, StatusPaid, StatusCanceled},
	StatusFailedPayment:   {StatusPaid, StatusCanceled},
	StatusPaid:            {StatusPreparedProduct, StatusCanceled},
	StatusPreparedProduct: {StatusShipped},
	StatusShipped:         {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusFailedPayment, StatusPaid,
		StatusPreparedProduct, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsPayable reports whether a status still accepts a payment attempt.
func IsPayable(s Status) bool {
	return s == StatusRequested || s == StatusFailedPayment
}

// CanPay is true while the order awaits payment and no attempt has been
// confirmed paid. Any confirmed payment blocks further attempts.
func CanPay(s Status, hasPaidPayment bool) bool {
	return IsPayable(s) && !hasPaidPayment
}
