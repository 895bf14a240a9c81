// Package author serves author detail, derived author listings and an
// author's books.
package author

import (
	"bookhub/internal/entity"
	"bookhub/internal/platform/openlibrary"
)

type Author = entity.Author

// payload is the detail response; bio arrives as a string or {type, value}.
type payload struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	PersonalName   string   `json:"personal_name"`
	BirthDate      string   `json:"birth_date"`
	DeathDate      string   `json:"death_date"`
	Bio            any      `json:"bio"`
	Photos         []int    `json:"photos"`
	AlternateNames []string `json:"alternate_names"`
	WorkCount      int      `json:"work_count" validate:"gte=0"`
}

func (p payload) toAuthor(key string) Author {
	name := p.Name
	if name == "" {
		name = p.PersonalName
	}
	if name == "" {
		name = entity.UnknownAuthor
	}
	return Author{
		Key:            key,
		Name:           name,
		PersonalName:   p.PersonalName,
		BirthDate:      p.BirthDate,
		DeathDate:      p.DeathDate,
		Bio:            openlibrary.FormatBio(p.Bio),
		Photos:         p.Photos,
		AlternateNames: p.AlternateNames,
		WorkCount:      p.WorkCount,
	}
}
