package domain

// Tenant is an organization scope. Its slug prefixes every model-scoped
// request path.
type Tenant struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// User is an account belonging to one tenant.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	TenantID  string `json:"-"`
	Tenant    string `json:"tenant"` // tenant slug
	CreatedAt string `json:"created_at"`
}

// Invitation lets a new user join a tenant by redeeming its token.
type Invitation struct {
	ID        string
	Token     string
	Email     string
	TenantID  string
	Accepted  bool
	CreatedAt string
}
