package enums

import "strings"

// ReminderCategory is the closed classification of a reminder used for server-side
// routing. The user-facing label lives separately as the reminder's display type.
type ReminderCategory string

const (
	ReminderCategoryAppointment    ReminderCategory = "APPOINTMENT"
	ReminderCategoryFollowUp       ReminderCategory = "FOLLOW_UP"
	ReminderCategoryCall           ReminderCategory = "CALL"
	ReminderCategoryAdministrative ReminderCategory = "ADMINISTRATIVE"
	ReminderCategoryGeneral        ReminderCategory = "GENERAL"
)

var validReminderCategories = []ReminderCategory{
	ReminderCategoryAppointment,
	ReminderCategoryFollowUp,
	ReminderCategoryCall,
	ReminderCategoryAdministrative,
	ReminderCategoryGeneral,
}

func (c ReminderCategory) String() string {
	return string(c)
}

func (c ReminderCategory) IsValid() bool {
	for _, candidate := range validReminderCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// MatchReminderCategory maps free text such as "follow-up" or "Call" onto a
// category. ok is false when nothing matches.
func MatchReminderCategory(value string) (ReminderCategory, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	c := ReminderCategory(normalized)
	return c, c.IsValid()
}
