package domain

// Participant is a point-in-time snapshot of a user involved in a ticket,
// recomputed on demand from message history. Never persisted.
type Participant struct {
	ID          string
	Username    string
	DisplayName string
	IsStaff     bool
	IsCreator   bool
}

// ParticipantSet accumulates participants keyed by user id. The first
// occurrence wins for the displayed name; iteration order is insertion order
// of first appearance.
type ParticipantSet struct {
	order []string
	byID  map[string]*Participant
}

// NewParticipantSet returns an empty set.
func NewParticipantSet() *ParticipantSet {
	return &ParticipantSet{byID: make(map[string]*Participant)}
}

// Add records a participant unless the user is already present.
func (s *ParticipantSet) Add(p Participant) {
	if _, ok := s.byID[p.ID]; ok {
		return
	}
	s.order = append(s.order, p.ID)
	copied := p
	s.byID[p.ID] = &copied
}

// MarkCreator flags the participant with the given id as the ticket creator,
// if present.
func (s *ParticipantSet) MarkCreator(id string) {
	if p, ok := s.byID[id]; ok {
		p.IsCreator = true
	}
}

// Len returns the number of distinct participants.
func (s *ParticipantSet) Len() int {
	return len(s.order)
}

// List returns the participants in first-appearance order.
func (s *ParticipantSet) List() []Participant {
	out := make([]Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}
