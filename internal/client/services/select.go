package services

import "github.com/dmitrijs2005/conops/internal/client/models"

// SelectPrimary picks the convention a sync pass targets:
//  1. the one whose short name matches preferred, ignoring case;
//  2. the only one, when there is exactly one;
//  3. the first active one;
//  4. the first one.
//
// ok is false only for an empty list.
func SelectPrimary(conventions []models.Convention, preferred string) (primary models.Convention, ok bool) {
	if len(conventions) == 0 {
		return models.Convention{}, false
	}
	for _, c := range conventions {
		if c.MatchesShortName(preferred) {
			return c, true
		}
	}
	if len(conventions) == 1 {
		return conventions[0], true
	}
	for _, c := range conventions {
		if c.Active {
			return c, true
		}
	}
	return conventions[0], true
}

func filterConventions(conventions []models.Convention, includeInactive bool) []models.Convention {
	if includeInactive {
		return conventions
	}
	out := make([]models.Convention, 0, len(conventions))
	for _, c := range conventions {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

func findConvention(conventions []models.Convention, id int64) (models.Convention, bool) {
	for _, c := range conventions {
		if c.ID == id {
			return c, true
		}
	}
	return models.Convention{}, false
}
