package stats

import "github.com/verte-zerg/cvsheet/internal/model"

// Demographics counts self-reported gender, age and accent values over clips.
// Empty values are excluded. Accent strings are counted whole, even when a
// contributor reported several accents in one field.
func Demographics(clips []model.ClipRecord) model.Demographics {
	var d model.Demographics
	for _, c := range clips {
		if c.Gender != "" {
			d.Gender.Add(c.Gender)
		}
		if c.Age != "" {
			d.Age.Add(c.Age)
		}
		if c.Accents != "" {
			d.Accent.Add(c.Accents)
		}
	}
	return d
}
