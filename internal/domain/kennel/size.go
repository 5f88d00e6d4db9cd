package kennel

import (
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

// SizeClass is ordered: small < medium < large < extra_large.
type SizeClass string

const (
	SizeSmall      SizeClass = "small"
	SizeMedium     SizeClass = "medium"
	SizeLarge      SizeClass = "large"
	SizeExtraLarge SizeClass = "extra_large"
)

var (
	ErrInvalidSize   = httperr.ErrBusiness("invalid_kennel_size")
	ErrOccupied      = httperr.ErrBusiness("kennel_occupied")
	ErrNumberTaken   = httperr.ErrBusiness("kennel_number_taken")
	ErrInvalidNumber = httperr.ErrBusiness("invalid_kennel_number")
	ErrNotFound      = httperr.ErrNotFound("kennel_not_found")
)

// ParseSize accepts "extra large", "Extra_Large" and the like.
func ParseSize(raw string) (SizeClass, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")

	switch SizeClass(s) {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return SizeClass(s), true
	}
	return "", false
}

// Compatible applies the strict check-in rule: a small pet fits only a small
// kennel, medium and large pets fit their size or bigger, and a pet of
// unknown size fits anywhere.
func Compatible(petSize *string, kennelSize string) bool {
	if petSize == nil || strings.TrimSpace(*petSize) == "" {
		return true
	}

	pet, ok := ParseSize(*petSize)
	if !ok {
		return true
	}
	k, ok := ParseSize(kennelSize)
	if !ok {
		return false
	}

	switch pet {
	case SizeSmall:
		return k == SizeSmall
	case SizeMedium:
		return k == SizeMedium || k == SizeLarge || k == SizeExtraLarge
	case SizeLarge:
		return k == SizeLarge || k == SizeExtraLarge
	}
	return true
}

// HeldBy reports whether appointmentID is the current occupant of k.
func HeldBy(k models.Kennel, appointmentID uuid.UUID) bool {
	return k.IsOccupied && k.CurrentAppointmentID != nil && *k.CurrentAppointmentID == appointmentID
}

// FreeFor reports whether k is free or already held by appointmentID, so an
// appointment being edited is offered the kennel it holds.
func FreeFor(k models.Kennel, appointmentID uuid.UUID) bool {
	return !k.IsOccupied || HeldBy(k, appointmentID)
}

// Available keeps the kennels an appointment may be checked into, preserving
// input order.
func Available(kennels []models.Kennel, appointmentID uuid.UUID, petSize *string) []models.Kennel {
	out := make([]models.Kennel, 0, len(kennels))
	for _, k := range kennels {
		if !FreeFor(k, appointmentID) {
			continue
		}
		if !Compatible(petSize, k.KennelSize) {
			continue
		}
		out = append(out, k)
	}
	return out
}
