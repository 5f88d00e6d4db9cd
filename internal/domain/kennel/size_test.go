package kennel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

func strPtr(s string) *string { return &s }

func numbers(kennels []models.Kennel) []string {
	out := make([]string, 0, len(kennels))
	for _, k := range kennels {
		out = append(out, k.KennelNumber)
	}
	return out
}

func TestCompatible(t *testing.T) {
	cases := []struct {
		pet    *string
		kennel string
		want   bool
	}{
		{strPtr("small"), "small", true},
		{strPtr("small"), "medium", false},
		{strPtr("small"), "extra_large", false},
		{strPtr("medium"), "small", false},
		{strPtr("medium"), "medium", true},
		{strPtr("medium"), "extra_large", true},
		{strPtr("large"), "medium", false},
		{strPtr("large"), "large", true},
		{strPtr("Large"), "Extra Large", true},
		{nil, "small", true},
		{strPtr(""), "large", true},
	}

	for _, tc := range cases {
		pet := "<nil>"
		if tc.pet != nil {
			pet = *tc.pet
		}
		assert.Equal(t, tc.want, Compatible(tc.pet, tc.kennel), "pet=%s kennel=%s", pet, tc.kennel)
	}
}

func TestAvailable_FiltersBySizeAndOccupancy(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	kennels := []models.Kennel{
		{KennelNumber: "K1", KennelSize: "small"},
		{KennelNumber: "K2", KennelSize: "medium"},
		{KennelNumber: "K3", KennelSize: "large"},
		{KennelNumber: "K4", KennelSize: "large", IsOccupied: true, CurrentAppointmentID: &other},
		{KennelNumber: "K5", KennelSize: "extra_large", IsOccupied: true, CurrentAppointmentID: &self},
	}

	assert.Equal(t, []string{"K2", "K3", "K5"}, numbers(Available(kennels, self, strPtr("medium"))))
	assert.Equal(t, []string{"K1"}, numbers(Available(kennels, self, strPtr("small"))))
	assert.Equal(t, []string{"K3", "K5"}, numbers(Available(kennels, self, strPtr("large"))))
	assert.Equal(t, []string{"K1", "K2", "K3", "K5"}, numbers(Available(kennels, self, nil)))
}

func TestParseSize(t *testing.T) {
	s, ok := ParseSize(" Extra Large ")
	assert.True(t, ok)
	assert.Equal(t, SizeExtraLarge, s)

	_, ok = ParseSize("huge")
	assert.False(t, ok)
}

func TestHeldByAndFreeFor(t *testing.T) {
	holder := uuid.New()
	other := uuid.New()

	free := models.Kennel{KennelNumber: "K1"}
	held := models.Kennel{KennelNumber: "K2", IsOccupied: true, CurrentAppointmentID: &holder}

	assert.False(t, HeldBy(free, holder))
	assert.True(t, FreeFor(free, other))

	assert.True(t, HeldBy(held, holder))
	assert.True(t, FreeFor(held, holder))
	assert.False(t, HeldBy(held, other))
	assert.False(t, FreeFor(held, other))
}
