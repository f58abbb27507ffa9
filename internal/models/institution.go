package models

type InstitutionType string

const (
	InstitutionSchool     InstitutionType = "school"
	InstitutionCollege    InstitutionType = "college"
	InstitutionUniversity InstitutionType = "university"
)

// Institution is a school, college or university used as the anchor for
// nearby business search.
type Institution struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    InstitutionType `json:"type"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Address string          `json:"address,omitempty"`
}
