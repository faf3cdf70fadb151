package reports

import (
	"time"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Period echoes the requested date window; unset bounds render as null.
type Period struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// PaymentTotals aggregates orders sharing a payment method.
type PaymentTotals struct {
	Orders  int          `json:"orders"`
	Revenue shared.Money `json:"revenue"`
}

// TopClient ranks merchants by order count.
type TopClient struct {
	ClientID     string       `json:"clientId"`
	ClientName   string       `json:"clientName"`
	TotalOrders  int          `json:"totalOrders"`
	TotalRevenue shared.Money `json:"totalRevenue"`
}

// TopMotoboy ranks couriers by order count.
type TopMotoboy struct {
	MotoboyID   string       `json:"motoboyId"`
	MotoboyName string       `json:"motoboyName"`
	TotalOrders int          `json:"totalOrders"`
	TotalPayout shared.Money `json:"totalPayout"`
}

// CompanySummary holds platform-wide totals.
type CompanySummary struct {
	TotalOrders             int          `json:"totalOrders"`
	TotalRevenue            shared.Money `json:"totalRevenue"`
	TotalCommission         shared.Money `json:"totalCommission"`
	TotalCourierPayout      shared.Money `json:"totalCourierPayout"`
	AverageOrderValue       shared.Money `json:"averageOrderValue"`
	ActiveSubscribers       int          `json:"activeSubscribers"`
	MonthlyRecurringRevenue shared.Money `json:"monthlyRecurringRevenue"`
	SkippedOrders           int          `json:"skippedOrders"`
}

// CompanyReport is the central-only platform report.
type CompanyReport struct {
	Period             Period                   `json:"period"`
	Summary            CompanySummary           `json:"summary"`
	BreakdownByPayment map[string]PaymentTotals `json:"breakdownByPayment"`
	TopClients         []TopClient              `json:"topClients"`
	TopMotoboys        []TopMotoboy             `json:"topMotoboys"`
	Orders             shared.Page[OrderView]   `json:"orders"`
}

// ClientInfo identifies the merchant a report is about. The subscription
// flag is only filled for central.
type ClientInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsSubscriber *bool  `json:"isSubscriber,omitempty"`
}

// ClientSummary totals a merchant's orders. Commission and payout totals are
// only filled for central.
type ClientSummary struct {
	TotalOrders         int           `json:"totalOrders"`
	DeliveredOrders     int           `json:"deliveredOrders"`
	TotalMerchandise    shared.Money  `json:"totalMerchandise"`
	TotalDeliveryFees   shared.Money  `json:"totalDeliveryFees"`
	TotalCustomerCharge shared.Money  `json:"totalCustomerCharge"`
	TotalCommission     *shared.Money `json:"totalCommission,omitempty"`
	TotalCourierPayout  *shared.Money `json:"totalCourierPayout,omitempty"`
	SkippedOrders       int           `json:"skippedOrders"`
}

// ClientReport is one merchant's report.
type ClientReport struct {
	Client             ClientInfo               `json:"client"`
	Period             Period                   `json:"period"`
	Summary            ClientSummary            `json:"summary"`
	BreakdownByPayment map[string]PaymentTotals `json:"breakdownByPayment"`
	Orders             shared.Page[OrderView]   `json:"orders"`
}

// MotoboyInfo identifies the courier a report is about.
type MotoboyInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MotoboySummary totals a courier's deliveries. Revenue and commission are
// only filled for central.
type MotoboySummary struct {
	TotalOrders     int           `json:"totalOrders"`
	TotalDeliveries int           `json:"totalDeliveries"`
	TotalPayout     shared.Money  `json:"totalPayout"`
	WeeklyEarnings  shared.Money  `json:"weeklyEarnings"`
	MonthlyEarnings shared.Money  `json:"monthlyEarnings"`
	TotalRevenue    *shared.Money `json:"totalRevenue,omitempty"`
	TotalCommission *shared.Money `json:"totalCommission,omitempty"`
	SkippedOrders   int           `json:"skippedOrders"`
}

// MotoboyReport is one courier's report.
type MotoboyReport struct {
	Motoboy MotoboyInfo            `json:"motoboy"`
	Period  Period                 `json:"period"`
	Summary MotoboySummary         `json:"summary"`
	Orders  shared.Page[OrderView] `json:"orders"`
}

// OrdersReport is the scoped order listing.
type OrdersReport struct {
	Period        Period                 `json:"period"`
	SkippedOrders int                    `json:"skippedOrders"`
	Orders        shared.Page[OrderView] `json:"orders"`
}
