package usage

import (
	"strings"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
)

type Resource string

const (
	ResourceClients      Resource = "clients"
	ResourcePets         Resource = "pets"
	ResourceAppointments Resource = "appointments"
)

var resources = []Resource{
	ResourceClients,
	ResourcePets,
	ResourceAppointments,
}

const Unlimited = -1

// Limits are monthly caps per resource. Unlimited disables a cap.
type Limits struct {
	Clients      int `json:"clients"`
	Pets         int `json:"pets"`
	Appointments int `json:"appointments"`
}

func (l Limits) For(r Resource) int {
	switch r {
	case ResourceClients:
		return l.Clients
	case ResourcePets:
		return l.Pets
	case ResourceAppointments:
		return l.Appointments
	}
	return 0
}

const DefaultPlan = "free"

var plans = map[string]Limits{
	"free":  {Clients: 50, Pets: 100, Appointments: 100},
	"basic": {Clients: 500, Pets: 1000, Appointments: 1000},
	"pro":   {Clients: Unlimited, Pets: Unlimited, Appointments: Unlimited},
}

// PlanLimits resolves a plan name, falling back to the free plan.
func PlanLimits(plan string) (string, Limits) {
	name := strings.ToLower(strings.TrimSpace(plan))
	if l, ok := plans[name]; ok {
		return name, l
	}
	return DefaultPlan, plans[DefaultPlan]
}

var ErrLimitReached = httperr.ErrBusiness("usage_limit_reached")

func reached(used, limit int) bool {
	return limit != Unlimited && used >= limit
}

// warns at 80% of the limit
func warning(used, limit int) bool {
	return limit != Unlimited && limit > 0 && used*10 >= limit*8
}

func percentage(used, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (used*100 + limit/2) / limit
}
