package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/staff"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/validators"
)

// StaffHandler manages the salon's team: member profiles and pending
// invitations. The caller's role is read from the database, not the token,
// so a demotion takes effect immediately.
type StaffHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewStaffHandler(db *gorm.DB, audit *audit.Dispatcher) *StaffHandler {
	return &StaffHandler{db: db, audit: audit}
}

type UpdateStaffRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
}

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// ======================================================
// LIST STAFF
// ======================================================
func (h *StaffHandler) List(c *gin.Context) {
	salonID := middleware.SalonID(c)

	var users []models.User
	if err := h.db.
		Where("salon_id = ?", salonID).
		Order("full_name ASC").
		Find(&users).Error; err != nil {

		httperr.Internal(c, "failed_to_list_staff", "Could not list staff.")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	httpresp.List(c, out)
}

// ======================================================
// UPDATE STAFF
// ======================================================
// Update edits a member's profile. Anyone may edit their own name and phone;
// other members and every role change need an owner or manager.
func (h *StaffHandler) Update(c *gin.Context) {
	salonID := middleware.SalonID(c)
	callerID := middleware.UserID(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var member models.User
	err := h.db.Transaction(func(tx *gorm.DB) error {
		caller, err := findMember(tx, salonID, callerID)
		if err != nil {
			return err
		}
		callerRole := staff.Role(caller.Role)

		if id != callerID && !staff.CanManage(callerRole) {
			return staff.ErrForbidden
		}

		m, err := findMember(tx, salonID, id)
		if err != nil {
			return err
		}
		member = *m

		if req.FullName != nil {
			name := strings.TrimSpace(*req.FullName)
			if name == "" {
				return httperr.ErrBusiness("invalid_name")
			}
			member.FullName = name
		}
		if req.Phone != nil {
			member.Phone = strings.TrimSpace(*req.Phone)
		}

		if req.Role != nil {
			target, ok := staff.ParseRole(*req.Role)
			if !ok {
				return staff.ErrInvalidRole
			}
			current := staff.Role(member.Role)
			if target != current {
				if err := staff.CanAssign(callerRole, current, target); err != nil {
					return err
				}
				if current == staff.RoleOwner {
					if err := ensureAnotherOwner(tx, salonID); err != nil {
						return err
					}
				}
				member.Role = string(target)
			}
		}

		if err := tx.Model(&member).
			Select("full_name", "phone", "role").
			Updates(&member).Error; err != nil {
			return httperr.ErrStorage("update_staff", err)
		}
		return nil
	})
	if err != nil {
		fail(c, "update staff", err)
		return
	}

	auditRow(c, h.audit, salonID, "staff_updated", "user", member.ID, map[string]any{
		"role": member.Role,
	})

	c.JSON(http.StatusOK, userJSON(&member))
}

// ======================================================
// INVITATIONS
// ======================================================
func (h *StaffHandler) ListInvitations(c *gin.Context) {
	salonID := middleware.SalonID(c)

	var invitations []models.Invitation
	if err := h.db.
		Where("salon_id = ? AND status = ?", salonID, staff.InvitationPending).
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC()).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {

		httperr.Internal(c, "failed_to_list_invitations", "Could not list invitations.")
		return
	}

	httpresp.List(c, invitations)
}

func (h *StaffHandler) CreateInvitation(c *gin.Context) {
	salonID := middleware.SalonID(c)
	callerID := middleware.UserID(c)

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	role := staff.RoleStaff
	if strings.TrimSpace(req.Role) != "" {
		r, ok := staff.ParseRole(req.Role)
		if !ok {
			httperr.BadRequest(c, "invalid_role", "Role must be owner, manager, groomer or staff.")
			return
		}
		role = r
	}

	email := validators.NormalizeEmail(req.Email)
	now := time.Now().UTC()
	expires := now.Add(staff.InvitationTTL)

	invitation := models.Invitation{
		SalonID:   salonID,
		Email:     email,
		Role:      string(role),
		Status:    staff.InvitationPending,
		InvitedBy: callerID,
		ExpiresAt: &expires,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		caller, err := findMember(tx, salonID, callerID)
		if err != nil {
			return err
		}
		if err := staff.CanAssign(staff.Role(caller.Role), staff.RoleStaff, role); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ?", email).
			Count(&count).Error; err != nil {
			return httperr.ErrStorage("count_users", err)
		}
		if count > 0 {
			return httperr.ErrBusiness("email_already_exists")
		}

		if err := tx.Model(&models.Invitation{}).
			Where("salon_id = ? AND email = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
				salonID, email, staff.InvitationPending, now).
			Count(&count).Error; err != nil {
			return httperr.ErrStorage("count_invitations", err)
		}
		if count > 0 {
			return staff.ErrInvitationExists
		}

		if err := tx.Create(&invitation).Error; err != nil {
			return httperr.ErrStorage("create_invitation", err)
		}
		return nil
	})
	if err != nil {
		fail(c, "create invitation", err)
		return
	}

	auditRow(c, h.audit, salonID, "invitation_created", "invitation", invitation.ID, map[string]any{
		"email": invitation.Email,
		"role":  invitation.Role,
	})

	httpresp.Created(c, invitation)
}

func (h *StaffHandler) DeleteInvitation(c *gin.Context) {
	salonID := middleware.SalonID(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	caller, err := findMember(h.db, salonID, middleware.UserID(c))
	if err != nil {
		fail(c, "delete invitation", err)
		return
	}
	if !staff.CanManage(staff.Role(caller.Role)) {
		fail(c, "delete invitation", staff.ErrForbidden)
		return
	}

	res := h.db.
		Where("id = ? AND salon_id = ?", id, salonID).
		Delete(&models.Invitation{})
	if res.Error != nil {
		fail(c, "delete invitation", httperr.ErrStorage("delete_invitation", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		fail(c, "delete invitation", staff.ErrInviteNotFound)
		return
	}

	auditRow(c, h.audit, salonID, "invitation_deleted", "invitation", id, nil)

	c.Status(http.StatusNoContent)
}

// ------------------------------------------------------

func findMember(db *gorm.DB, salonID, userID uuid.UUID) (*models.User, error) {
	var u models.User
	if err := db.
		Where("id = ? AND salon_id = ?", userID, salonID).
		First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staff.ErrMemberNotFound
		}
		return nil, httperr.ErrStorage("get_staff", err)
	}
	return &u, nil
}

// ensureAnotherOwner refuses to demote the salon's only owner.
func ensureAnotherOwner(tx *gorm.DB, salonID uuid.UUID) error {
	var owners int64
	if err := tx.Model(&models.User{}).
		Where("salon_id = ? AND role = ?", salonID, staff.RoleOwner).
		Count(&owners).Error; err != nil {
		return httperr.ErrStorage("count_owners", err)
	}
	if owners < 2 {
		return staff.ErrLastOwner
	}
	return nil
}
