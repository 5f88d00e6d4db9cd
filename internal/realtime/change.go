package realtime

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Table string

const (
	TableAppointments  Table = "appointments"
	TableKennels       Table = "kennels"
	TablePayments      Table = "payments"
	TableClients       Table = "clients"
	TablePets          Table = "pets"
	TableServices      Table = "services"
	TableNotifications Table = "notifications"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change is one committed row event, scoped to a salon.
type Change struct {
	SalonID   uuid.UUID `json:"salon_id"`
	Table     Table     `json:"table"`
	Op        Op        `json:"op"`
	RowID     uuid.UUID `json:"row_id"`
	Status    string    `json:"status,omitempty"`
	OldStatus string    `json:"old_status,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher receives changes after the write that produced them committed.
// Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, changes ...Change)
}

// View is a client-side screen that must refetch when it is invalidated.
type View string

const (
	ViewAppointments View = "appointments"
	ViewKennels      View = "kennels"
	ViewDashboard    View = "dashboard"
	ViewPayments     View = "payments"
	ViewClients      View = "clients"
	ViewReports      View = "reports"
	ViewUsage        View = "usage"
)

var invalidates = map[Table][]View{
	TableAppointments:  {ViewAppointments, ViewDashboard, ViewReports},
	TableKennels:       {ViewKennels, ViewDashboard},
	TablePayments:      {ViewPayments, ViewReports, ViewDashboard},
	TableClients:       {ViewClients, ViewAppointments, ViewUsage},
	TablePets:          {ViewClients, ViewAppointments, ViewUsage},
	TableServices:      {ViewAppointments},
	TableNotifications: {ViewDashboard},
}

// Invalidates lists the views a change to table makes stale.
func Invalidates(table Table) []View {
	return invalidates[table]
}

// ParseTable accepts the table names a client may subscribe to.
func ParseTable(s string) (Table, bool) {
	t := Table(strings.ToLower(strings.TrimSpace(s)))
	_, ok := invalidates[t]
	return t, ok
}
