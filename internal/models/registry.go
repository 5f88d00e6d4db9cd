package models

// All lists every table the service migrates, in dependency order.
func All() []any {
	return []any{
		&Salon{},
		&User{},
		&Client{},
		&Pet{},
		&Service{},
		&Appointment{},
		&AppointmentService{},
		&Kennel{},
		&Payment{},
		&AuditLog{},
		&Notification{},
		&Invitation{},
	}
}
