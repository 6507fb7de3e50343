package templating

import "github.com/bizdocs/backend/internal/domain/shared"

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left int) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot be negative")
	}
	if top > 100 || right > 100 || bottom > 100 || left > 100 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot exceed 100mm")
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// DefaultMargins returns the default page margins
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 15, Bottom: 15, Left: 15}
}

// Equals checks if two Margins are equal
func (m Margins) Equals(other Margins) bool {
	return m == other
}

// validatePlaceholders checks placeholder declarations for a template
func validatePlaceholders(placeholders []Placeholder) error {
	seen := make(map[string]struct{}, len(placeholders))
	for _, p := range placeholders {
		if !IsValidVariableKey(p.Key) {
			return shared.NewDomainError("INVALID_PLACEHOLDER", "Invalid placeholder key: "+p.Key)
		}
		if _, dup := seen[p.Key]; dup {
			return shared.NewDomainError("INVALID_PLACEHOLDER", "Duplicate placeholder key: "+p.Key)
		}
		if p.Type != "" && !p.Type.IsValid() {
			return shared.NewDomainError("INVALID_PLACEHOLDER", "Invalid placeholder type: "+string(p.Type))
		}
		seen[p.Key] = struct{}{}
	}
	return nil
}
