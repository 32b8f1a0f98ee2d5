package order

// Status is the fulfilment state of an order
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusComplete   Status = "COMPLETE"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusComplete, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// PaymentStatus tracks money movement for an order
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusAuthorized        PaymentStatus = "AUTHORIZED"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusVoided            PaymentStatus = "VOIDED"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusAuthorized, PaymentStatusPaid,
		PaymentStatusPartiallyRefunded, PaymentStatusRefunded, PaymentStatusVoided:
		return true
	}
	return false
}

// ShippingStatus tracks delivery of an order
type ShippingStatus string

const (
	ShippingStatusNotRequired   ShippingStatus = "SHIPPING_NOT_REQUIRED"
	ShippingStatusNotYetShipped ShippingStatus = "NOT_YET_SHIPPED"
	ShippingStatusShipped       ShippingStatus = "SHIPPED"
	ShippingStatusDelivered     ShippingStatus = "DELIVERED"
)

// IsValid checks if the shipping status is known
func (s ShippingStatus) IsValid() bool {
	switch s {
	case ShippingStatusNotRequired, ShippingStatusNotYetShipped, ShippingStatusShipped, ShippingStatusDelivered:
		return true
	}
	return false
}
