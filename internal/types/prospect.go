// Package types defines the shared data structures for the prospect research pipeline.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Prospect is the person and company under analysis. It is immutable for the
// duration of one pipeline run.
type Prospect struct {
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name" validate:"required,min=1"`
	Company   string `json:"company" validate:"required,min=1"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

// Validate validates the Prospect using the validator.
func (p *Prospect) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// FullName returns the prospect's first and last name joined with a space.
func (p *Prospect) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// TitleOrDefault returns the prospect's title, or a placeholder if unset.
func (p *Prospect) TitleOrDefault() string {
	if p.Title == "" {
		return "Not specified"
	}
	return p.Title
}

// EmailOrDefault returns the prospect's email, or a placeholder if unset.
func (p *Prospect) EmailOrDefault() string {
	if p.Email == "" {
		return "Not specified"
	}
	return p.Email
}
