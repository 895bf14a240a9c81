package entity

const UnknownAuthor = "Unknown Author"

type Author struct {
	Key            string   `json:"key" yaml:"key" validate:"required"`
	Name           string   `json:"name" yaml:"name"`
	PersonalName   string   `json:"personal_name,omitempty" yaml:"personal_name,omitempty"`
	BirthDate      string   `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate      string   `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	Bio            string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	Photos         []int    `json:"photos,omitempty" yaml:"photos,omitempty"`
	AlternateNames []string `json:"alternate_names,omitempty" yaml:"alternate_names,omitempty"`
	// WorkCount is derived from the books seen this session.
	WorkCount int `json:"work_count" yaml:"work_count"`
}

// Category is a subject label with the number of books seen carrying it.
type Category struct {
	Name      string `json:"name" yaml:"name"`
	BookCount int    `json:"book_count" yaml:"book_count"`
}

// HasDetails reports whether the author came from the detail endpoint rather
// than being synthesized from a book listing.
func (a Author) HasDetails() bool {
	return a.Bio != "" || a.BirthDate != "" || a.PersonalName != "" || len(a.Photos) > 0
}
