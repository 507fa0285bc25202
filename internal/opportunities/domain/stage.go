// Package domain provides core business rules for the opportunities bounded
// context: the pipeline stage catalog and the opportunity stage machine.
package domain

import (
	"clientdesk_backend/platform/apperr"

	"github.com/google/uuid"
)

// Stage is one named position in the sales pipeline. The catalog is loaded
// once and treated as immutable; ordering follows DisplayOrder.
type Stage struct {
	ID           uuid.UUID
	Key          string
	Name         string
	DisplayOrder int
	Won          bool
}

// StageCatalog is the ordered list of pipeline stages (ascending DisplayOrder).
type StageCatalog []Stage

// ByKey returns the stage with the given key.
func (c StageCatalog) ByKey(key string) (Stage, bool) {
	for _, s := range c {
		if s.Key == key {
			return s, true
		}
	}
	return Stage{}, false
}

// Contains reports whether key is a member of the catalog.
func (c StageCatalog) Contains(key string) bool {
	_, ok := c.ByKey(key)
	return ok
}

// First returns the initial pipeline stage. New opportunities start here.
func (c StageCatalog) First() (Stage, bool) {
	if len(c) == 0 {
		return Stage{}, false
	}
	return c[0], true
}

// WonKey returns the key of the designated terminal won stage, or "" when the
// catalog has none.
func (c StageCatalog) WonKey() string {
	for _, s := range c {
		if s.Won {
			return s.Key
		}
	}
	return ""
}

// next returns the stage one position after current in catalog order. When
// current is the last stage, current itself is returned so the transition
// resolves to a no-op.
func (c StageCatalog) next(current string) string {
	for i, s := range c {
		if s.Key == current {
			if i+1 < len(c) {
				return c[i+1].Key
			}
			return current
		}
	}
	return current
}

// TransitionTarget names either an explicit target stage or the relative
// "advance one position" direction.
type TransitionTarget struct {
	// StageKey is the explicit target stage; ignored when Next is true.
	StageKey string
	// Next advances one position in catalog order from the current stage.
	Next bool
}

// Resolve turns a transition target into a concrete stage key. An explicit
// key absent from the catalog is rejected before any mutation.
func (c StageCatalog) Resolve(current string, target TransitionTarget) (string, error) {
	if target.Next {
		return c.next(current), nil
	}
	if !c.Contains(target.StageKey) {
		return "", apperr.Validation("target stage is not in the pipeline catalog").
			WithCode(apperr.CodeInvalidTarget).
			WithDetails(map[string]string{"stage": target.StageKey})
	}
	return target.StageKey, nil
}
