package models

// Form payloads accepted by the browser-facing handlers. Fields carry gin
// binding tags so ShouldBind validates them with go-playground/validator.

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	Redirect string `form:"redirect" json:"redirect"`
}

type RegisterRequest struct {
	Name     string `form:"name" json:"name" binding:"required,min=2"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=abcdefghijklmnopqrstuvwxyz"`
	PhotoURL string `form:"photoURL" json:"photoURL" binding:"omitempty,url"`
	Redirect string `form:"redirect" json:"redirect"`
}

type ProfileRequest struct {
	Name     string `form:"name" json:"name" binding:"omitempty,min=2"`
	PhotoURL string `form:"photoURL" json:"photoURL" binding:"omitempty,url"`
}

type BookingRequest struct {
	BookingDate string `form:"bookingDate" json:"bookingDate" binding:"required,datetime=2006-01-02"`
	Location    string `form:"location" json:"location" binding:"required"`
}

type ConfirmRequest struct {
	Confirm bool `form:"confirm" json:"confirm"`
}

type ServiceRequest struct {
	Name        string `form:"service_name" json:"service_name" binding:"required"`
	Cost        string `form:"cost" json:"cost" binding:"required,number"`
	Unit        string `form:"unit" json:"unit" binding:"required"`
	Category    string `form:"service_category" json:"service_category" binding:"required,oneof=wedding home office seminar meeting"`
	Description string `form:"description" json:"description" binding:"required"`
	Features    string `form:"features" json:"features"`
	ImageURL    string `form:"image" json:"image" binding:"omitempty,url"`
}

type AssignRequest struct {
	DecoratorEmail string `form:"decoratorEmail" json:"decoratorEmail" binding:"required,email"`
}

type DecoratorStatusRequest struct {
	Status  string `form:"status" json:"status" binding:"required,oneof=active inactive"`
	Confirm bool   `form:"confirm" json:"confirm"`
}

type ProjectStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
