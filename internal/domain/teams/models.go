package teams

// Team is a football team as the backend reports it. Teams are reference data
// and never change while a week is on screen.
type Team struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	LogoPath     string `json:"logo_path"`
}

// Display is the narrow view a team button needs.
type Display interface {
	TeamID() int64
	DisplayName() string
	LogoRef() string
}

func (t Team) TeamID() int64 { return t.ID }

// DisplayName prefers the full name and falls back to the abbreviation.
func (t Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Abbreviation
}

func (t Team) LogoRef() string { return t.LogoPath }
