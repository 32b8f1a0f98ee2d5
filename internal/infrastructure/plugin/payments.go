package plugin

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/plugin"
)

// System names of the built-in payment methods
const (
	CheckMoneyOrderSystemName = "Payments.CheckMoneyOrder"
	ManualSystemName          = "Payments.Manual"
)

// CheckMoneyOrderSettings configures check / money order payments
type CheckMoneyOrderSettings struct {
	DescriptionText string
	AdditionalFee   decimal.Decimal
	ShippableOnly   bool
}

// CheckMoneyOrderPlugin accepts orders that are paid offline; an admin marks
// them as paid once the money arrives.
type CheckMoneyOrderPlugin struct {
	base
}

// NewCheckMoneyOrderPlugin creates the check / money order payment method
func NewCheckMoneyOrderPlugin(settings SettingStore) *CheckMoneyOrderPlugin {
	return &CheckMoneyOrderPlugin{
		base: newBase(CheckMoneyOrderSystemName, "check / money order", "Payment methods", plugin.KindPayment, 1, settings,
			func() any {
				return &CheckMoneyOrderSettings{
					DescriptionText: "Mail a personal or business check, cashier's check or money order to the store address.",
					AdditionalFee:   decimal.Zero,
				}
			}),
	}
}

// ProcessPayment leaves the order pending
func (p *CheckMoneyOrderPlugin) ProcessPayment(_ context.Context, _ *plugin.ProcessPaymentRequest) (*plugin.ProcessPaymentResult, error) {
	return &plugin.ProcessPaymentResult{NewPaymentStatus: order.PaymentStatusPending}, nil
}

// Capture is not supported
func (p *CheckMoneyOrderPlugin) Capture(_ context.Context, _ *order.Order) (*plugin.PaymentOperationResult, error) {
	return unsupported("Capture"), nil
}

// Refund is not supported
func (p *CheckMoneyOrderPlugin) Refund(_ context.Context, _ *order.Order, _ decimal.Decimal, _ bool) (*plugin.PaymentOperationResult, error) {
	return unsupported("Refund"), nil
}

// Void is not supported
func (p *CheckMoneyOrderPlugin) Void(_ context.Context, _ *order.Order) (*plugin.PaymentOperationResult, error) {
	return unsupported("Void"), nil
}

func (p *CheckMoneyOrderPlugin) PaymentMethodType() plugin.PaymentMethodType {
	return plugin.PaymentMethodStandard
}

func (p *CheckMoneyOrderPlugin) SupportCapture() bool         { return false }
func (p *CheckMoneyOrderPlugin) SupportRefund() bool          { return false }
func (p *CheckMoneyOrderPlugin) SupportPartiallyRefund() bool { return false }
func (p *CheckMoneyOrderPlugin) SupportVoid() bool            { return false }

// AdditionalHandlingFee returns the configured fee of the store
func (p *CheckMoneyOrderPlugin) AdditionalHandlingFee(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	s, err := load[CheckMoneyOrderSettings](ctx, &p.base, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.AdditionalFee, nil
}

// TransactMode selects what happens to a card at checkout
type TransactMode string

const (
	TransactModeAuthorize           TransactMode = "Authorize"
	TransactModeAuthorizeAndCapture TransactMode = "AuthorizeAndCapture"
)

// ManualPaymentSettings configures manual card processing
type ManualPaymentSettings struct {
	TransactMode  string
	AdditionalFee decimal.Decimal
}

// ManualPlugin stores validated card details for offline processing
type ManualPlugin struct {
	base
	now func() time.Time
}

// NewManualPlugin creates the manual credit card payment method
func NewManualPlugin(settings SettingStore) *ManualPlugin {
	return &ManualPlugin{
		base: newBase(ManualSystemName, "credit card (manual processing)", "Payment methods", plugin.KindPayment, 2, settings,
			func() any {
				return &ManualPaymentSettings{
					TransactMode:  string(TransactModeAuthorize),
					AdditionalFee: decimal.Zero,
				}
			}),
		now: time.Now,
	}
}

// ProcessPayment validates the card and authorizes, or captures, the amount
func (p *ManualPlugin) ProcessPayment(ctx context.Context, req *plugin.ProcessPaymentRequest) (*plugin.ProcessPaymentResult, error) {
	result := &plugin.ProcessPaymentResult{}
	result.Errors = p.validateCard(req)
	if len(result.Errors) > 0 {
		return result, nil
	}

	s, err := load[ManualPaymentSettings](ctx, &p.base, req.StoreID)
	if err != nil {
		return nil, err
	}
	switch TransactMode(s.TransactMode) {
	case TransactModeAuthorizeAndCapture:
		result.NewPaymentStatus = order.PaymentStatusPaid
	default:
		result.NewPaymentStatus = order.PaymentStatusAuthorized
	}
	return result, nil
}

func (p *ManualPlugin) validateCard(req *plugin.ProcessPaymentRequest) []string {
	var errs []string
	if strings.TrimSpace(req.CreditCardName) == "" {
		errs = append(errs, "Cardholder name is required")
	}
	if !ValidCardNumber(req.CreditCardNumber) {
		errs = append(errs, "Wrong card number")
	}
	cvv := strings.TrimSpace(req.CreditCardCvv2)
	if len(cvv) < 3 || len(cvv) > 4 || strings.IndexFunc(cvv, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		errs = append(errs, "Wrong card code")
	}
	now := p.now()
	if req.CreditCardExpireMonth < 1 || req.CreditCardExpireMonth > 12 {
		errs = append(errs, "Wrong expiration month")
	} else if req.CreditCardExpireYear < now.Year() ||
		(req.CreditCardExpireYear == now.Year() && req.CreditCardExpireMonth < int(now.Month())) {
		errs = append(errs, "Card expired")
	}
	return errs
}

// Capture moves an authorized payment to paid
func (p *ManualPlugin) Capture(_ context.Context, o *order.Order) (*plugin.PaymentOperationResult, error) {
	return &plugin.PaymentOperationResult{NewPaymentStatus: order.PaymentStatusPaid, TransactionID: o.AuthorizationTransactionID}, nil
}

// Refund returns money; a partial refund keeps the order partially refunded
func (p *ManualPlugin) Refund(_ context.Context, _ *order.Order, _ decimal.Decimal, partial bool) (*plugin.PaymentOperationResult, error) {
	status := order.PaymentStatusRefunded
	if partial {
		status = order.PaymentStatusPartiallyRefunded
	}
	return &plugin.PaymentOperationResult{NewPaymentStatus: status}, nil
}

// Void cancels an authorization
func (p *ManualPlugin) Void(_ context.Context, _ *order.Order) (*plugin.PaymentOperationResult, error) {
	return &plugin.PaymentOperationResult{NewPaymentStatus: order.PaymentStatusVoided}, nil
}

func (p *ManualPlugin) PaymentMethodType() plugin.PaymentMethodType {
	return plugin.PaymentMethodStandard
}

func (p *ManualPlugin) SupportCapture() bool         { return true }
func (p *ManualPlugin) SupportRefund() bool          { return true }
func (p *ManualPlugin) SupportPartiallyRefund() bool { return true }
func (p *ManualPlugin) SupportVoid() bool            { return true }

// AdditionalHandlingFee returns the configured fee of the store
func (p *ManualPlugin) AdditionalHandlingFee(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	s, err := load[ManualPaymentSettings](ctx, &p.base, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.AdditionalFee, nil
}

// ValidCardNumber runs the Luhn check over a card number; spaces and dashes
// are ignored.
func ValidCardNumber(number string) bool {
	digits := make([]int, 0, len(number))
	for _, r := range number {
		switch {
		case r == ' ' || r == '-':
			continue
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		default:
			return false
		}
	}
	if len(digits) < 12 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func unsupported(operation string) *plugin.PaymentOperationResult {
	return &plugin.PaymentOperationResult{Errors: []string{fmt.Sprintf("%s method not supported", operation)}}
}

var (
	_ plugin.PaymentMethod = (*CheckMoneyOrderPlugin)(nil)
	_ plugin.PaymentMethod = (*ManualPlugin)(nil)
)
