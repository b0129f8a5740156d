package auth

import (
	"strings"
	"unicode"

	"github.com/local1284/membership/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PolicyViolationError reports every strength rule a candidate password
// failed. It maps to HTTP 400 at the boundary.
type PolicyViolationError struct {
	Violations []string
}

func (e *PolicyViolationError) Error() string {
	return "password does not meet complexity requirements: " + strings.Join(e.Violations, "; ")
}

// ValidatePasswordStrength checks the candidate against the configured
// policy and returns every violated rule.
func ValidatePasswordStrength(password string, policy config.PasswordPolicy) []string {
	var violations []string

	if len(password) < policy.MinLength {
		violations = append(violations, "too short")
	}
	if len(password) > policy.MaxLength {
		violations = append(violations, "too long")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if policy.RequireLowercase && !hasLower {
		violations = append(violations, "missing lowercase letter")
	}
	if policy.RequireUppercase && !hasUpper {
		violations = append(violations, "missing uppercase letter")
	}
	if policy.RequireDigits && !hasDigit {
		violations = append(violations, "missing digit")
	}
	if policy.RequireSymbols && !hasSymbol {
		violations = append(violations, "missing symbol")
	}

	return violations
}

// HashPassword validates the candidate against the policy, then derives a
// salted bcrypt credential at the configured cost.
func HashPassword(password string, policy config.PasswordPolicy, cost int) (string, error) {
	if violations := ValidatePasswordStrength(password, policy); len(violations) > 0 {
		return "", &PolicyViolationError{Violations: violations}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored credential.
// A malformed or empty credential verifies as false, never as an error;
// bcrypt compares derived bytes in constant time.
func VerifyPassword(password, credential string) bool {
	if credential == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(credential), []byte(password)) == nil
}
