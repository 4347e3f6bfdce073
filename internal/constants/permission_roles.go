package constants

import "naviport-backend/internal/domain"

// PermissionRoles maps each permission to the roles allowed to perform it.
// The session role claim is trusted; no further credential checks happen here.
var PermissionRoles = map[string][]string{
	ManageShips:    {domain.RoleArmator},
	CreateDemand:   {domain.RoleArmator},
	ManageDemand:   {domain.RoleArmator},
	ApproveDemand:  {domain.RoleAdmin},
	SubmitOffer:    {domain.RoleAgency},
	AcceptOffer:    {domain.RoleArmator},
	SendNomination: {domain.RoleArmator},
	ReadNomination: {domain.RoleAgency},
	SubmitReview:   {domain.RoleArmator},
	RegisterPorts:  {domain.RoleAgency},
	SubmitPda:      {domain.RoleArmator},
	ReviewPda:      {domain.RoleAdmin},
	ManagePdaItems: {domain.RoleAdmin},
	RequestUpload:  {domain.RoleArmator, domain.RoleAgency, domain.RoleAdmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
