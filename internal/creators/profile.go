package creators

import "newsroom/internal/contextstore"

// Profile is the displayable view of a creator, including the bio and
// description templates.
type Profile struct {
	ID          string              `json:"id"`
	Role        string              `json:"role"`
	Name        string              `json:"name"`
	Slant       string              `json:"slant"`
	Style       string              `json:"style"`
	Bio         string              `json:"bio,omitempty"`
	Description string              `json:"description,omitempty"`
	Defaults    map[string]string   `json:"defaults,omitempty"`
	Traits      map[string][]string `json:"traits,omitempty"`
}

// Profiles returns the profiles of every creator, journalists first. Missing
// bio or description templates leave the field empty.
func (r *Registry) Profiles(loader *contextstore.Loader) []Profile {
	var profiles []Profile
	for _, j := range r.Journalists() {
		profiles = append(profiles, j.Profile(loader))
	}
	for _, a := range r.Artists() {
		profiles = append(profiles, a.Profile(loader))
	}
	return profiles
}

// Profile builds the journalist's profile.
func (j Journalist) Profile(loader *contextstore.Loader) Profile {
	p := Profile{
		ID:    j.ID,
		Role:  "journalist",
		Name:  j.Name(),
		Slant: j.Slant,
		Style: j.Style,
		Defaults: map[string]string{
			"tone":         string(j.DefaultTone),
			"article_type": string(j.DefaultArticleType),
		},
	}
	p.Bio, p.Description = loadBio(loader, j.ID)
	return p
}

// Profile builds the artist's profile.
func (a Artist) Profile(loader *contextstore.Loader) Profile {
	p := Profile{
		ID:    a.ID,
		Role:  "artist",
		Name:  a.Name(),
		Slant: a.Slant,
		Style: a.Style,
		Traits: map[string][]string{
			"mediums":    a.Mediums(),
			"aesthetics": a.Aesthetics(),
			"styles":     a.Styles(),
		},
	}
	p.Bio, p.Description = loadBio(loader, a.ID)
	return p
}

func loadBio(loader *contextstore.Loader, id string) (string, string) {
	if loader == nil {
		return "", ""
	}
	key := TemplateKey(id)
	bio, _ := loader.Load(contextstore.KindBio, key)
	description, _ := loader.Load(contextstore.KindDescription, key)
	return bio, description
}
