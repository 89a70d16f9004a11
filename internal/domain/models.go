package domain

import "fmt"

// Kind tags which variant of result a suggestion is
type Kind string

const (
	KindText Kind = "text" // plain query completion
	KindUser Kind = "user" // a person
	KindPage Kind = "page" // a page, group or place
)

// Valid reports whether k is one of the known result kinds
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindUser, KindPage:
		return true
	}
	return false
}

// Badge is the short label shown next to a result
func (k Kind) Badge() string {
	switch k {
	case KindUser:
		return "@"
	case KindPage:
		return "#"
	default:
		return "›"
	}
}

// Result is a single suggestion returned for a query. Results are produced
// fresh for every query and never persisted.
type Result struct {
	ID       string `json:"id" yaml:"id" toml:"id"`
	Kind     Kind   `json:"kind" yaml:"kind" toml:"kind"`
	Title    string `json:"title" yaml:"title" toml:"title"`
	Subtitle string `json:"subtitle,omitempty" yaml:"subtitle,omitempty" toml:"subtitle,omitempty"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty" toml:"image,omitempty"`
}

// Label returns the one-line text for a result
func (r Result) Label() string {
	if r.Subtitle == "" {
		return r.Title
	}
	return fmt.Sprintf("%s · %s", r.Title, r.Subtitle)
}

// Validate checks the fields every source must fill in
func (r Result) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("result %q has no id", r.Title)
	}
	if r.Title == "" {
		return fmt.Errorf("result %s has no title", r.ID)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("result %s has unknown kind %q", r.ID, r.Kind)
	}
	return nil
}
