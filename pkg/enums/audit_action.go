package enums

// AuditAction tags an audit log entry.
type AuditAction string

const (
	AuditActionUserRegistered       AuditAction = "USER_REGISTERED"
	AuditActionUserLoggedIn         AuditAction = "USER_LOGGED_IN"
	AuditActionUserUpdated          AuditAction = "USER_UPDATED"
	AuditActionUserDeleted          AuditAction = "USER_DELETED"
	AuditActionClientValidated      AuditAction = "CLIENT_VALIDATED"
	AuditActionAnimalDeleted        AuditAction = "ANIMAL_DELETED"
	AuditActionAppointmentCreated   AuditAction = "APPOINTMENT_CREATED"
	AuditActionAppointmentConfirmed AuditAction = "APPOINTMENT_CONFIRMED"
	AuditActionAppointmentRefused   AuditAction = "APPOINTMENT_REFUSED"
	AuditActionAppointmentCancelled AuditAction = "APPOINTMENT_CANCELLED"
	AuditActionAppointmentCompleted AuditAction = "APPOINTMENT_COMPLETED"
	AuditActionAppointmentDeleted   AuditAction = "APPOINTMENT_DELETED"
	AuditActionBookingCreated       AuditAction = "BOOKING_CREATED"
	AuditActionBlogPostPublished    AuditAction = "BLOG_POST_PUBLISHED"
)

func (a AuditAction) String() string {
	return string(a)
}
