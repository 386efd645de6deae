package models

// EducationEntry, ExperienceEntry and ProjectEntry are stored as ordered
// sequences; order is display order and must survive storage round-trips.

type EducationEntry struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Year   int    `json:"year"`
}

type ExperienceEntry struct {
	Company  string `json:"company"`
	Role     string `json:"role"`
	Duration string `json:"duration"`
}

type ProjectEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Portfolio belongs to exactly one employee. At most one portfolio per
// employee; the store enforces uniqueness on EmployeeID.
type Portfolio struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employeeId"`
	Name       string            `json:"name"`
	Position   string            `json:"position"`
	Bio        string            `json:"bio"`
	Picture    string            `json:"picture,omitempty"`
	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
	Projects   []ProjectEntry    `json:"projects"`
	Skills     []string          `json:"skills"`
}

// EmployeeSummary is the owner identity embedded when portfolios are listed.
type EmployeeSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PortfolioWithOwner is the join of a portfolio with its owner's identity.
type PortfolioWithOwner struct {
	Portfolio
	Employee EmployeeSummary `json:"employee"`
}
