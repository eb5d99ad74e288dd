package domain

// Organization is the minimal tenant view the detector sweep needs.
type Organization struct {
	ID     string
	Name   string
	Active bool
}
