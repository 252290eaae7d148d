package models

// ProfileRecord is the row written to the user_profiles table.
// Optional columns are nil when the sign-up metadata did not carry them.
type ProfileRecord struct {
	ID          string  `json:"id"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	UserType    *string `json:"user_type,omitempty"`
}

// ProfileFromUser maps an auth user onto the profile row.
func ProfileFromUser(u AuthUser) ProfileRecord {
	return ProfileRecord{
		ID:          u.ID,
		Email:       u.Email.Ptr(),
		Phone:       u.UserMetadata.Phone.Ptr(),
		DisplayName: u.UserMetadata.DisplayName.Ptr(),
		UserType:    u.UserMetadata.UserType.Ptr(),
	}
}
