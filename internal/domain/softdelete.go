package domain

import "time"

// SoftDelete is the mark-and-filter deletion record embedded by entities that
// hide rather than drop rows. Repositories exclude marked rows from default
// queries; restore listings query the complement.
type SoftDelete struct {
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// MarkDeleted stamps the entity as deleted at the given time.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	t := now
	s.DeletedAt = &t
}

// Restore clears the deletion mark.
func (s *SoftDelete) Restore() {
	s.DeletedAt = nil
}

// IsDeleted reports whether the entity carries a deletion mark.
func (s *SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
