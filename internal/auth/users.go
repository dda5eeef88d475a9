package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Role is a user's position in the brokerage.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleExecutive  Role = "EXECUTIVE"
	RoleOperations Role = "OPERATIONS"
)

// Valid returns true if r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleExecutive, RoleOperations:
		return true
	}
	return false
}

// User represents a named user of the dashboard.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore manages users in SQLite.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Add creates a new user.
func (s *UserStore) Add(email, name string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %q", role)
	}

	result, err := s.db.Exec(
		"INSERT INTO users (email, name, role) VALUES (?, ?, ?)",
		email, name, string(role),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("user already exists: %s", email)
		}
		return nil, fmt.Errorf("adding user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user ID: %w", err)
	}

	return s.GetByID(id)
}

// GetByID returns a user by ID.
func (s *UserStore) GetByID(id int64) (*User, error) {
	return s.get("SELECT id, email, name, role, created_at FROM users WHERE id = ?", id)
}

// GetByEmail returns a user by email.
func (s *UserStore) GetByEmail(email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.get("SELECT id, email, name, role, created_at FROM users WHERE LOWER(email) = ?", email)
}

func (s *UserStore) get(query string, arg interface{}) (*User, error) {
	var u User
	var role string
	err := s.db.QueryRow(query, arg).Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.Role = Role(role)
	return &u, nil
}

// List returns all users ordered by email.
func (s *UserStore) List() ([]*User, error) {
	rows, err := s.db.Query(
		"SELECT id, email, name, role, created_at FROM users ORDER BY email",
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var users []*User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Role = Role(role)
		users = append(users, &u)
	}

	return users, rows.Err()
}

// ExecutiveNames returns the names of all non-admin users, for the
// executive activity report.
func (s *UserStore) ExecutiveNames() ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM users WHERE role != 'ADMIN' ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing executives: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Delete removes a user by ID.
func (s *UserStore) Delete(id int64) error {
	result, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// EnsureSeed inserts the default brokerage roster when the table is empty.
func (s *UserStore) EnsureSeed() error {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return nil
	}

	seed := []struct {
		email, name string
		role        Role
	}{
		{"admin@sauma.cl", "Administrador", RoleAdmin},
		{"juan@sauma.cl", "Juan Pérez", RoleExecutive},
		{"maria@sauma.cl", "Maria Gomez", RoleOperations},
	}

	for _, u := range seed {
		if _, err := s.Add(u.email, u.name, u.role); err != nil {
			return fmt.Errorf("seeding %s: %w", u.email, err)
		}
	}

	return nil
}
