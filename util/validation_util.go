// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/schedly/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateOrganization(organization model.Organization) error {
	if organization.Name == "" {
		return fmt.Errorf("organization name cannot be empty")
	}
	if organization.Slug == "" {
		return fmt.Errorf("organization slug cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateTeam(team model.Team) error {
	if team.Name == "" {
		return fmt.Errorf("team name cannot be empty")
	}
	if team.OrganizationID == 0 {
		return fmt.Errorf("team organization ID cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}
	if user.Username == "" {
		return fmt.Errorf("user username cannot be empty")
	}
	if user.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateMembership(membership model.Membership) error {
	if membership.UserID == 0 {
		return fmt.Errorf("membership user ID cannot be empty")
	}
	switch membership.Role {
	case model.MembershipRoleMember, model.MembershipRoleAdmin, model.MembershipRoleOwner:
	default:
		return fmt.Errorf("membership role must be one of MEMBER, ADMIN, OWNER")
	}
	return nil
}
