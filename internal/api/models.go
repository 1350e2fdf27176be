package api

import "time"

// Request and response structures for the API surface. Due dates travel as
// "YYYY-MM-DD" strings; all other timestamps are RFC 3339.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest defines the payload for the login endpoint. The identifier
// may be a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse carries an issued access/refresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}

// UserResponse is the public shape of a user. Password material never
// appears here.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UpdateProfileRequest defines the payload for profile updates. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,max=72"`
}

// UserListResponse is a page of users.
type UserListResponse struct {
	Users   []UserResponse `json:"users"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title       string   `json:"title"                 validate:"required,max=128"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=1024"`
	Status      string   `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    string   `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high"`
	DueDate     string   `json:"due_date,omitempty"`
	CategoryID  string   `json:"category_id,omitempty" validate:"omitempty,uuid"`
	TagIDs      []string `json:"tag_ids,omitempty"     validate:"omitempty,dive,uuid"`
}

// UpdateTaskRequest defines the payload for task updates. Absent fields are
// left unchanged; an explicit empty string clears due_date or category_id.
type UpdateTaskRequest struct {
	Title       *string  `json:"title,omitempty"       validate:"omitempty,max=128"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1024"`
	Status      *string  `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string  `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high"`
	DueDate     *string  `json:"due_date,omitempty"`
	CategoryID  *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	TagIDs      []string `json:"tag_ids,omitempty"     validate:"omitempty,dive,uuid"`
}

// TaskResponse is the wire shape of a task.
type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     string            `json:"due_date,omitempty"`
	Overdue     bool              `json:"overdue"`
	CategoryID  string            `json:"category_id,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Tags        []TagResponse     `json:"tags"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TaskListResponse is a page of tasks.
type TaskListResponse struct {
	Tasks   []TaskResponse `json:"tasks"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// TaskStatsResponse aggregates a user's task counts.
type TaskStatsResponse struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
	DueToday   int `json:"due_today"`
}

// CategoryRequest defines the payload for category creation.
type CategoryRequest struct {
	Name        string `json:"name"                  validate:"required,max=64"`
	Description string `json:"description,omitempty" validate:"omitempty,max=256"`
}

// UpdateCategoryRequest defines the payload for category updates.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=64"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=256"`
}

// CategoryResponse is the wire shape of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListResponse is a page of categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
}

// CategoryStatsResponse is the per-category task breakdown.
type CategoryStatsResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Todo       int    `json:"todo"`
	InProgress int    `json:"in_progress"`
	Done       int    `json:"done"`
}

// TagRequest defines the payload for tag creation and rename.
type TagRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// TagResponse is the wire shape of a tag.
type TagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TagListResponse is a page of tags.
type TagListResponse struct {
	Tags    []TagResponse `json:"tags"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// TagStatsResponse is the per-tag task count.
type TagStatsResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaskCount int    `json:"task_count"`
}
