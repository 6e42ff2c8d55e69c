package models

// PlayerProfile holds durable, course-independent observations about the
// player. Tendencies are stored in insertion order but behave like a set:
// appending text that already exists is a no-op.
type PlayerProfile struct {
	Tendencies []string `json:"tendencies,omitempty"`
}

// AddTendency appends a tendency unless the exact text is already present.
// It reports whether the tendency was added.
func (p *PlayerProfile) AddTendency(tendency string) bool {
	for _, existing := range p.Tendencies {
		if existing == tendency {
			return false
		}
	}
	p.Tendencies = append(p.Tendencies, tendency)
	return true
}
