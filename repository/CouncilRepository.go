package repository

import (
	"errors"

	"portal/models"

	"gorm.io/gorm"
)

// ResolveUserCouncil looks up the council a user belongs to through their
// profile. The second return reports whether a council link exists.
func ResolveUserCouncil(db *gorm.DB, userID uint) (*models.Council, bool) {
	var profile models.UserProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil || profile.CouncilID == nil {
		return nil, false
	}

	var council models.Council
	if err := db.First(&council, *profile.CouncilID).Error; err != nil {
		return nil, false
	}
	return &council, true
}

// UserCouncilRole returns the council role from the user's profile, empty
// when no profile exists.
func UserCouncilRole(db *gorm.DB, userID uint) string {
	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return ""
	}
	return profile.CouncilRole
}

// UserInGroup reports whether the user belongs to the named role group
func UserInGroup(db *gorm.DB, userID uint, groupName string) bool {
	var count int64
	db.Table("user_groups").
		Joins("JOIN user_group ON user_group.id = user_groups.group_id").
		Where("user_groups.user_id = ? AND user_group.name = ?", userID, groupName).
		Count(&count)
	return count > 0
}

// IsRICDOfficer reports whether the user is RICD Staff or RICD Manager
func IsRICDOfficer(db *gorm.DB, userID uint) bool {
	return UserInGroup(db, userID, models.GroupRICDStaff) ||
		UserInGroup(db, userID, models.GroupRICDManager)
}

// IsRICDManager reports whether the user is an RICD Manager
func IsRICDManager(db *gorm.DB, userID uint) bool {
	return UserInGroup(db, userID, models.GroupRICDManager)
}

// IsCouncilManagerOf reports whether the user is the council manager of the
// given council: profile council matches and council_role is manager.
func IsCouncilManagerOf(db *gorm.DB, userID uint, councilID uint) bool {
	var profile models.UserProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return false
	}
	return profile.CouncilID != nil && *profile.CouncilID == councilID &&
		profile.CouncilRole == models.CouncilRoleManager
}

// ErrNoCouncilAccess is returned when a council-scoped query is made by a
// user with no council and no RICD role.
var ErrNoCouncilAccess = errors.New("user has no council access")

// ScopeProjectsToUser narrows a project query to the user's council unless
// the user is RICD staff, who see everything.
func ScopeProjectsToUser(db *gorm.DB, query *gorm.DB, userID uint) (*gorm.DB, error) {
	if IsRICDOfficer(db, userID) {
		return query, nil
	}
	council, ok := ResolveUserCouncil(db, userID)
	if !ok {
		return nil, ErrNoCouncilAccess
	}
	return query.Where("project.council_id = ?", council.ID), nil
}

// ScopeWorksToUser narrows a work query through the address and project chain
// to the user's council unless the user is RICD staff.
func ScopeWorksToUser(db *gorm.DB, query *gorm.DB, userID uint) (*gorm.DB, error) {
	if IsRICDOfficer(db, userID) {
		return query, nil
	}
	council, ok := ResolveUserCouncil(db, userID)
	if !ok {
		return nil, ErrNoCouncilAccess
	}
	return query.
		Joins("JOIN address ON address.id = work.address_id").
		Joins("JOIN project ON project.id = address.project_id").
		Where("project.council_id = ?", council.ID), nil
}

// CouncilForWork walks Work -> Address -> Project -> Council
func CouncilForWork(db *gorm.DB, workID uint) (*models.Council, error) {
	var council models.Council
	err := db.
		Joins("JOIN project ON project.council_id = council.id").
		Joins("JOIN address ON address.project_id = project.id").
		Joins("JOIN work ON work.address_id = address.id").
		Where("work.id = ?", workID).
		First(&council).Error
	if err != nil {
		return nil, err
	}
	return &council, nil
}
