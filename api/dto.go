/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine values use
  decimals internally; on the wire money and hours are plain JSON numbers
  rounded to two places.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Auth:
    UserDTO, RegisterRequest, LoginRequest, RefreshRequest, AuthResponse

  Hours:
    HoursDTO, SaveHoursRequest (days reuse factory.DayJSON)

  Models:
    ModelsResponse, SaveModelsRequest, AddModelRequest, UpdateModelRequest

  Report:
    ReportDTO, DayValueDTO, SeriesDTO, ProjectDTO

VALIDATION:
  Request bodies are checked against JSON Schemas (schema.go) before they
  are decoded into these types.

SEE ALSO:
  - factory/model.go: DayJSON and ModelJSON
  - schema.go: request schemas
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MatheSouzaF/horas-extras/auth"
	"github.com/MatheSouzaF/horas-extras/factory"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

// =============================================================================
// AUTH
// =============================================================================

// UserDTO represents an account in API responses.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"deviceName,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	Token        string  `json:"token"`
	RefreshToken string  `json:"refreshToken"`
	User         UserDTO `json:"user"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User UserDTO `json:"user"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// =============================================================================
// HOURS
// =============================================================================

// HoursDTO is the month record returned by GET /hours.
type HoursDTO struct {
	Salary float64           `json:"salary"`
	Month  string            `json:"month"`
	Days   []factory.DayJSON `json:"days"`
}

// SaveHoursRequest is the body of PUT /hours.
type SaveHoursRequest struct {
	Salary float64           `json:"salary"`
	Days   []factory.DayJSON `json:"days"`
}

// =============================================================================
// MODELS
// =============================================================================

// ModelsResponse is the registry of one month.
type ModelsResponse struct {
	Month  string              `json:"month"`
	Models []factory.ModelJSON `json:"models"`
}

// SaveModelsRequest is the body of PUT /models.
type SaveModelsRequest struct {
	Models []factory.ModelJSON `json:"models"`
}

// AddModelRequest is the body of POST /models. A missing multiplier picks
// the default.
type AddModelRequest struct {
	Name       string   `json:"name"`
	Multiplier *float64 `json:"multiplier"`
}

// UpdateModelRequest is the body of PATCH /models/{id}. Absent fields are
// left unchanged.
type UpdateModelRequest struct {
	Name       *string  `json:"name,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
}

// ModelResponse is returned by POST /models.
type ModelResponse struct {
	Model  factory.ModelJSON   `json:"model"`
	Models []factory.ModelJSON `json:"models"`
}

// =============================================================================
// REPORT
// =============================================================================

// ReportDTO is the full valuation of one month.
type ReportDTO struct {
	Month      string        `json:"month"`
	Overnight  string        `json:"overnight"`
	Salary     float64       `json:"salary"`
	HourlyRate float64       `json:"hourlyRate"`
	TotalHours float64       `json:"totalHours"`
	TotalValue float64       `json:"totalValue"`
	Flat       FlatDTO       `json:"flat"`
	Days       []DayValueDTO `json:"days"`
	ByDate     []SeriesDTO   `json:"byDate"`
	ByProject  []SeriesDTO   `json:"byProject"`
	Projects   []ProjectDTO  `json:"projects"`
}

// FlatDTO is the flat-rate variant of the totals.
type FlatDTO struct {
	TotalHours float64 `json:"totalHours"`
	Total50    float64 `json:"total50"`
	Total100   float64 `json:"total100"`
}

// DayValueDTO is one valued day entry.
type DayValueDTO struct {
	factory.DayJSON
	Hours     float64 `json:"hours"`
	Value     float64 `json:"value"`
	ModelName string  `json:"modelName,omitempty"`
}

// SeriesDTO is one bar of a breakdown chart.
type SeriesDTO struct {
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
}

// ProjectDTO is the per-project summary.
type ProjectDTO struct {
	Label      string  `json:"label"`
	Hours      float64 `json:"hours"`
	TotalValue float64 `json:"totalValue"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toUserDTO(u auth.User) UserDTO {
	dto := UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
	if !u.CreatedAt.IsZero() {
		dto.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toAuthResponse(t auth.Tokens) AuthResponse {
	user := toUserDTO(t.User)
	user.CreatedAt = ""
	return AuthResponse{Token: t.AccessToken, RefreshToken: t.RefreshToken, User: user}
}

func toHoursDTO(record overtime.MonthRecord) HoursDTO {
	return HoursDTO{
		Salary: record.Salary.InexactFloat64(),
		Month:  record.Month,
		Days:   factory.DayDocs(record.Days),
	}
}

func toSeriesDTOs(points []overtime.SeriesPoint) []SeriesDTO {
	out := make([]SeriesDTO, len(points))
	for i, p := range points {
		out[i] = SeriesDTO{Label: p.Label, Hours: num(p.Hours)}
	}
	return out
}

func toReportDTO(r overtime.Report) ReportDTO {
	days := make([]DayValueDTO, len(r.Days))
	for i, d := range r.Days {
		days[i] = DayValueDTO{
			DayJSON:   factory.DayDocs([]overtime.DayEntry{d.Entry})[0],
			Hours:     num(d.Hours),
			Value:     num(d.Value),
			ModelName: d.ModelName,
		}
	}

	projects := make([]ProjectDTO, len(r.Projects))
	for i, p := range r.Projects {
		projects[i] = ProjectDTO{Label: p.Label, Hours: num(p.Hours), TotalValue: num(p.TotalValue)}
	}

	return ReportDTO{
		Month:      r.Month,
		Overnight:  string(r.Overnight),
		Salary:     num(r.Salary),
		HourlyRate: num(r.HourlyRate),
		TotalHours: num(r.Totals.TotalHours),
		TotalValue: num(r.Totals.TotalValue),
		Flat: FlatDTO{
			TotalHours: num(r.Flat.TotalHours),
			Total50:    num(r.Flat.Total50),
			Total100:   num(r.Flat.Total100),
		},
		Days:      days,
		ByDate:    toSeriesDTOs(r.ByDate),
		ByProject: toSeriesDTOs(r.ByProject),
		Projects:  projects,
	}
}
