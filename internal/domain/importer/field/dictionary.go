package field

// headerDictionary resolves well-known header spellings and abbreviations
// that the generic substring heuristics would mis-rank (e.g. "title" must
// land on jobTitle, "org" on companyName). Keys are normalized headers.
// Checked before any other matching rule.
var headerDictionary = map[string]CanonicalField{
	"firstname": FirstName,
	"first":     FirstName,
	"fname":     FirstName,

	"lastname": LastName,
	"last":     LastName,
	"lname":    LastName,
	"surname":  LastName,

	"jobtitle": JobTitle,
	"title":    JobTitle,
	"position": JobTitle,

	"joblevel": JobLevel,

	"jobrole":           JobRole,
	"jobroledepartment": JobRole,
	"jobroledept":       JobRole,
	"department":        JobRole,
	"role":              JobRole,

	"email":        Email,
	"mail":         Email,
	"emailaddress": Email,

	"phone": Phone,

	"directphone":    DirectPhone,
	"directphoneext": DirectPhone,
	"direct":         DirectPhone,
	"ext":            DirectPhone,

	"contactlinkedin":    ContactLinkedIn,
	"contactlinkedinurl": ContactLinkedIn,

	"companyname":  CompanyName,
	"company":      CompanyName,
	"org":          CompanyName,
	"organization": CompanyName,

	"address":  Address1,
	"address1": Address1,
	"address2": Address2,

	"city":    City,
	"state":   State,
	"zipcode": ZipCode,
	"zip":     ZipCode,
	"country": Country,
	"website": Website,

	"revenue": Revenue,
	"income":  Revenue,
	"sales":   Revenue,

	"employeesize": EmployeeSize,
	"employees":    EmployeeSize,
	"headcount":    EmployeeSize,

	"industry":        Industry,
	"subindustry":     SubIndustry,
	"subindustryname": SubIndustry,
	"subindustrytype": SubIndustry,

	"companylinkedin":    CompanyLinkedIn,
	"companylinkedinurl": CompanyLinkedIn,

	"technology":              Technology,
	"technologyinstalledbase": Technology,

	"lastupdatedate": LastUpdateDate,
	"lastupdate":     LastUpdateDate,
}
