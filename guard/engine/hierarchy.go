package engine

import (
	schedly_errors "github.com/schedly/api/errors"
	guard_model "github.com/schedly/api/guard/model"
)

// HasMinimumRole reports whether checkRole satisfies minimumRole within the
// given role set. The set is ordered descending by privilege (index 0 most
// privileged), so satisfaction is index(check) <= index(minimum). Either
// role missing from the set is a configuration error, not a denial.
func HasMinimumRole(roles []guard_model.Role, checkRole, minimumRole guard_model.Role) (bool, error) {
	checkIdx := roleIndex(roles, checkRole)
	minimumIdx := roleIndex(roles, minimumRole)

	if checkIdx == -1 || minimumIdx == -1 {
		return false, schedly_errors.ErrInvalidRole
	}

	return checkIdx <= minimumIdx, nil
}

func roleIndex(roles []guard_model.Role, role guard_model.Role) int {
	for i, r := range roles {
		if r == role {
			return i
		}
	}
	return -1
}
