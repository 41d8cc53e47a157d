// Package guard enforces actor identity and organizational scope. Every
// domain-service entry point calls one of these assertions before touching
// data; there is no opt-out path.
package guard

import (
	"backend/internal/model"
	"backend/pkg/apperror"
)

// AssertIdentity validates the actor's id, role, and scope consistency.
// Global roles must carry the global flag and no location restriction;
// non-global roles must never claim the flag; department-scoped roles
// must name a department.
func AssertIdentity(actor model.Actor) error {
	if actor.ID == "" {
		return apperror.Authorization("actor id is required")
	}

	spec, ok := model.LookupRole(actor.Role)
	if !ok {
		return apperror.Authorization("unrecognized role %q", actor.Role).
			WithMeta("role", string(actor.Role))
	}

	if spec.Global {
		if !actor.Global {
			return apperror.Authorization("role %q is global but actor scope is not", actor.Role)
		}
		if actor.LocationID != "" {
			return apperror.Authorization("global role %q must not carry a location restriction", actor.Role)
		}
		return nil
	}

	if actor.Global {
		return apperror.Authorization("role %q must not claim global scope", actor.Role)
	}
	if actor.LocationID == "" {
		return apperror.Authorization("role %q requires an assigned location", actor.Role)
	}
	if spec.DeptScoped && actor.DepartmentID == "" {
		return apperror.Authorization("role %q requires an assigned department", actor.Role)
	}

	return nil
}

// AssertCanMutate additionally rejects read-only roles.
func AssertCanMutate(actor model.Actor) error {
	if err := AssertIdentity(actor); err != nil {
		return err
	}
	spec, _ := model.LookupRole(actor.Role)
	if spec.ReadOnly {
		return apperror.Authorization("role %q is read-only and may not mutate", actor.Role)
	}
	return nil
}

// AssertLocationAccess requires the actor to be global or assigned to the
// target location.
func AssertLocationAccess(actor model.Actor, locationID string) error {
	if err := AssertIdentity(actor); err != nil {
		return err
	}
	if locationID == "" {
		return apperror.Domain("target location id is required")
	}
	if actor.Global || actor.LocationID == locationID {
		return nil
	}
	return apperror.Scope("actor location %q does not cover location %q", actor.LocationID, locationID).
		WithMeta("actor_location", actor.LocationID).
		WithMeta("target_location", locationID)
}

// AssertDepartmentAccess additionally requires a department match for
// department-scoped roles.
func AssertDepartmentAccess(actor model.Actor, locationID, departmentID string) error {
	if err := AssertLocationAccess(actor, locationID); err != nil {
		return err
	}
	spec, _ := model.LookupRole(actor.Role)
	if spec.DeptScoped && actor.DepartmentID != departmentID {
		return apperror.Scope("actor department %q does not cover department %q", actor.DepartmentID, departmentID).
			WithMeta("actor_department", actor.DepartmentID).
			WithMeta("target_department", departmentID)
	}
	return nil
}

// Located is any record exposing the location it belongs to.
type Located interface {
	LocationRef() string
}

// DepartmentLocated is any record exposing location and department.
type DepartmentLocated interface {
	Located
	DepartmentRef() string
}

// FilterByLocation returns the subset of records the actor's scope covers.
// Global actors see everything.
func FilterByLocation[T Located](actor model.Actor, records []T) []T {
	if actor.Global {
		return records
	}
	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if r.LocationRef() == actor.LocationID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FilterByDepartment narrows further for department-scoped roles.
func FilterByDepartment[T DepartmentLocated](actor model.Actor, records []T) []T {
	records = FilterByLocation(actor, records)
	spec, ok := model.LookupRole(actor.Role)
	if !ok || !spec.DeptScoped {
		return records
	}
	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if r.DepartmentRef() == actor.DepartmentID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
