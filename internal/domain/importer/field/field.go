// Package field defines the closed set of canonical contact fields and the
// matching rules that map user-supplied spreadsheet headers onto them.
package field

import "strings"

// CanonicalField is one of the fixed target attributes a contact record can
// carry. The set is closed and defined at startup; user headers are mapped
// onto it, never the other way around.
type CanonicalField string

const (
	FirstName       CanonicalField = "firstName"
	LastName        CanonicalField = "lastName"
	JobTitle        CanonicalField = "jobTitle"
	JobLevel        CanonicalField = "jobLevel"
	JobRole         CanonicalField = "jobRole"
	Email           CanonicalField = "email"
	Phone           CanonicalField = "phone"
	DirectPhone     CanonicalField = "directPhone"
	ContactLinkedIn CanonicalField = "contactLinkedIn"
	CompanyName     CanonicalField = "companyName"
	Address1        CanonicalField = "address1"
	Address2        CanonicalField = "address2"
	City            CanonicalField = "city"
	State           CanonicalField = "state"
	ZipCode         CanonicalField = "zipCode"
	Country         CanonicalField = "country"
	Website         CanonicalField = "website"
	Revenue         CanonicalField = "revenue"
	EmployeeSize    CanonicalField = "employeeSize"
	Industry        CanonicalField = "industry"
	SubIndustry     CanonicalField = "subIndustry"
	CompanyLinkedIn CanonicalField = "companyLinkedIn"
	Technology      CanonicalField = "technology"
	LastUpdateDate  CanonicalField = "lastUpdateDate"

	// Skip is the pseudo-field a user assigns to a column that must be
	// ignored during projection. It is never a member of All().
	Skip CanonicalField = "skip"
)

// all lists every assignable canonical field, in display order.
var all = []CanonicalField{
	FirstName, LastName, JobTitle, JobLevel, JobRole,
	Email, Phone, DirectPhone, ContactLinkedIn, CompanyName,
	Address1, Address2, City, State, ZipCode, Country, Website,
	Revenue, EmployeeSize, Industry, SubIndustry, CompanyLinkedIn,
	Technology, LastUpdateDate,
}

// mandatory is the subset of fields that must be mapped to a column and
// non-blank on every row before an import may proceed.
var mandatory = []CanonicalField{
	FirstName, LastName, JobTitle, Email, CompanyName, EmployeeSize, Revenue,
}

// All returns the assignable canonical fields. The returned slice is a copy.
func All() []CanonicalField {
	out := make([]CanonicalField, len(all))
	copy(out, all)
	return out
}

// Mandatory returns the mandatory field set. The returned slice is a copy.
func Mandatory() []CanonicalField {
	out := make([]CanonicalField, len(mandatory))
	copy(out, mandatory)
	return out
}

// IsMandatory reports whether f must be present for an import to proceed.
func IsMandatory(f CanonicalField) bool {
	for _, m := range mandatory {
		if m == f {
			return true
		}
	}
	return false
}

// IsKnown reports whether f is a member of the closed field set (Skip is not).
func IsKnown(f CanonicalField) bool {
	for _, c := range all {
		if c == f {
			return true
		}
	}
	return false
}

func (f CanonicalField) String() string { return string(f) }

// Normalize canonicalizes a header or field name into a comparison key:
// lowercase, alphanumeric only. Total function; originals are kept for
// display and as row keys.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
