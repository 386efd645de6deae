package api

import "time"

// Role values as the server reports them.
const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User mirrors the server's user representation on the wire.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Employee is a directory entry: the user plus whether a portfolio exists.
type Employee struct {
	User
	HasPortfolio bool `json:"hasPortfolio"`
}

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

type Portfolio struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employeeId"`
	Name       string            `json:"name"`
	Position   string            `json:"position"`
	Bio        string            `json:"bio"`
	Picture    string            `json:"picture"`
	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
	Projects   []ProjectEntry    `json:"projects"`
	Skills     []string          `json:"skills"`
}

// EmployeeSummary is the owner identity attached to listed portfolios.
type EmployeeSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PortfolioWithOwner struct {
	Portfolio
	Employee EmployeeSummary `json:"employee"`
}

// PictureFile carries a picture read from disk, bound for the multipart form.
type PictureFile struct {
	Name        string
	ContentType string
	Data        []byte
}
