package models

// Organization is a static roster: admins receive digests, users are expected respondents.
type Organization struct {
	Name   string   `json:"name" yaml:"name"`
	Admins []string `json:"admins" yaml:"admins"`
	Users  []string `json:"users" yaml:"users"`
}

// IsAdmin reports whether email is one of the organization's admins.
func (o Organization) IsAdmin(email string) bool {
	return contains(o.Admins, email)
}

// HasUser reports whether email is an expected respondent of the organization.
func (o Organization) HasUser(email string) bool {
	return contains(o.Users, email)
}

// OrganizationsAdministeredBy returns the organizations whose admins include email, in roster order.
func OrganizationsAdministeredBy(orgs []Organization, email string) []Organization {
	var out []Organization
	for _, o := range orgs {
		if o.IsAdmin(email) {
			out = append(out, o)
		}
	}
	return out
}

// IsMember reports whether email is a user of any organization.
func IsMember(orgs []Organization, email string) bool {
	for _, o := range orgs {
		if o.HasUser(email) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
