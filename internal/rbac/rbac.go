package rbac

// Role constants. The set is closed; anything else is denied.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleSteward    = "steward"
	RoleReadOnly   = "readonly"
)

// Identity is the authenticated actor attached to a request by the session
// middleware. A nil identity means the request is anonymous.
type Identity struct {
	ID         string
	Email      string
	Role       string
	CanSendSMS bool
}

// Denial reasons. AuthenticationRequired maps to 401, InsufficientRole and
// FieldNotAllowed map to 403.
const (
	ReasonAuthenticationRequired = "authentication_required"
	ReasonInsufficientRole       = "insufficient_role"
	ReasonFieldNotAllowed        = "field_not_allowed"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allowed = Decision{Allowed: true}

func denied(reason string) Decision {
	return Decision{Reason: reason}
}

var validRoles = map[string]bool{
	RoleSuperadmin: true,
	RoleAdmin:      true,
	RoleStaff:      true,
	RoleSteward:    true,
	RoleReadOnly:   true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

// Authorize admits the identity iff its role is in the required set.
// Anonymous requests are denied with a distinct reason so the boundary can
// answer 401 instead of 403.
func Authorize(identity *Identity, requiredRoles ...string) Decision {
	if identity == nil || identity.ID == "" {
		return denied(ReasonAuthenticationRequired)
	}
	for _, role := range requiredRoles {
		if identity.Role == role {
			return allowed
		}
	}
	return denied(ReasonInsufficientRole)
}

// stewardWritableMemberFields is the narrow allow-list for stewards editing
// members. Identity-establishing fields (names, cid/uid, contact info,
// address, seniority) are excluded.
var stewardWritableMemberFields = map[string]bool{
	"department_number": true,
	"department_name":   true,
	"status":            true,
	"internal_notes":    true,
	"tags":              true,
	"sms_groups":        true,
}

// MemberFieldsWritable checks a proposed member-update field set against the
// role's allow-list. Layered after Authorize passes; only stewards are
// restricted. Returns the first disallowed field on denial.
func MemberFieldsWritable(identity *Identity, fields []string) (Decision, string) {
	if identity == nil || identity.ID == "" {
		return denied(ReasonAuthenticationRequired), ""
	}
	if identity.Role != RoleSteward {
		return allowed, ""
	}
	for _, f := range fields {
		if !stewardWritableMemberFields[f] {
			return denied(ReasonFieldNotAllowed), f
		}
	}
	return allowed, ""
}
