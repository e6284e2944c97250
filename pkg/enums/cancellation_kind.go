package enums

// CancellationKind records who ended an appointment that landed in CANCELLED.
type CancellationKind string

const (
	// CancellationKindRefused marks a staff refusal of a SCHEDULED request.
	CancellationKindRefused CancellationKind = "REFUSED"
	CancellationKindClient  CancellationKind = "CLIENT"
	CancellationKindStaff   CancellationKind = "STAFF"
)

func (k CancellationKind) String() string {
	return string(k)
}

func (k CancellationKind) IsValid() bool {
	switch k {
	case CancellationKindRefused, CancellationKindClient, CancellationKindStaff:
		return true
	default:
		return false
	}
}
