package dto

type CreateClientRequest struct {
	FirstName   string  `json:"first_name" validate:"required,min=1"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
}

type UpdateClientRequest struct {
	FirstName   string  `json:"first_name" validate:"required,min=1"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"       validate:"omitempty,email"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
}

type ClientResponse struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference"`
	FirstName   string  `json:"first_name"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Description *string `json:"description,omitempty"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"created_at"`
}

type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
