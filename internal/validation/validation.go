// Package validation normalizes and validates signup input. All fields
// are always checked and every failure is collected into a field-keyed
// error map; callers never see a partial result.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Blessan-Corley/fixly-server/internal/models"
)

// FieldErrors maps a field name to a human-readable problem.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for f, msg := range fe {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	usernameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{2,29}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Indian mobile: ten digits starting 6-9, optionally prefixed with
	// the country code.
	mobileRe = regexp.MustCompile(`^(?:0|91|091)?([6-9]\d{9})$`)

	tempUsernameRe  = regexp.MustCompile(`^temp\d*$`)
	shortBurnerRe   = regexp.MustCompile(`^[a-z]{1,3}\d{3,}$`)
	placeholderMail = regexp.MustCompile(`^(test|fake|temp|dummy|asdf|qwerty)\d*@`)
)

// Reserved usernames: system terms, brand terms and legal-page slugs
// that would collide with routes or impersonate the platform.
var reservedUsernames = map[string]struct{}{
	"admin": {}, "administrator": {}, "root": {}, "system": {},
	"support": {}, "help": {}, "contact": {}, "info": {},
	"fixly": {}, "fixlyapp": {}, "official": {}, "moderator": {},
	"api": {}, "auth": {}, "login": {}, "signup": {}, "settings": {},
	"about": {}, "terms": {}, "privacy": {}, "careers": {}, "blog": {},
	"hirer": {}, "fixer": {}, "user": {}, "users": {}, "null": {},
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizePhone strips everything but digits and returns the canonical
// +91-prefixed form. The second return is false when the number does
// not look like a valid mobile number.
func NormalizePhone(phone string) (string, bool) {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	m := mobileRe.FindStringSubmatch(sb.String())
	if m == nil {
		return "", false
	}
	return "+91" + m[1], true
}

// CheckUsername validates an already-normalized username and returns a
// message for the first rule it breaks, or "" when acceptable.
func CheckUsername(username string) string {
	if !usernameRe.MatchString(username) {
		return "username must be 3-30 characters, start with a letter, and use only lowercase letters, digits and underscores"
	}
	if _, ok := reservedUsernames[username]; ok {
		return "this username is reserved"
	}
	if tempUsernameRe.MatchString(username) || shortBurnerRe.MatchString(username) {
		return "this username is not allowed"
	}
	for _, bad := range []string{"admin", "support", "fixly"} {
		if strings.Contains(username, bad) {
			return "this username is not allowed"
		}
	}
	return ""
}

// CheckPassword enforces the password policy. Outside production only a
// minimum length applies, which keeps test fixtures simple.
func CheckPassword(password string, production bool) string {
	if !production {
		if len(password) < 6 {
			return "password must be at least 6 characters"
		}
		return ""
	}
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return "password must include upper and lower case letters, a digit and a special character"
	}
	return ""
}

// Normalized is the validated field set produced from raw signup input.
type Normalized struct {
	Name     string
	Email    string
	Username string
	Phone    string
	Password string
	Role     string
}

// Signup validates and normalizes the raw signup fields, collecting
// every error rather than stopping at the first.
func Signup(req *models.SignupRequest, production bool) (*Normalized, FieldErrors) {
	errs := FieldErrors{}
	n := &Normalized{
		Name:     strings.TrimSpace(req.Name),
		Email:    NormalizeEmail(req.Email),
		Username: NormalizeUsername(req.Username),
		Role:     req.Role,
		Password: req.Password,
	}

	if len(n.Name) < 2 {
		errs["name"] = "name must be at least 2 characters"
	}
	if !emailRe.MatchString(n.Email) {
		errs["email"] = "invalid email address"
	}
	if msg := CheckUsername(n.Username); msg != "" {
		errs["username"] = msg
	}
	phone, ok := NormalizePhone(req.Phone)
	if !ok {
		errs["phone"] = "invalid mobile number"
	}
	n.Phone = phone

	if req.AuthMethod == models.AuthMethodEmail {
		if req.Password == "" {
			errs["password"] = "password is required"
		} else if msg := CheckPassword(req.Password, production); msg != "" {
			errs["password"] = msg
		}
	}

	if req.Role == models.RoleFixer && len(req.Skills) == 0 {
		errs["skills"] = "at least one skill is required for fixers"
	}
	if req.Location == nil || req.Location.City == "" {
		errs["location"] = "location with city is required"
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return n, nil
}

// LooksFake flags suspicious signups. Rejection is generic on purpose:
// no detail about which heuristic fired leaves the server.
func LooksFake(name, email, username string) bool {
	lname := strings.ToLower(strings.TrimSpace(name))
	if placeholderMail.MatchString(strings.ToLower(email)) {
		return true
	}
	for _, bad := range []string{"test user", "fake", "asdf", "qwerty", "dummy"} {
		if strings.Contains(lname, bad) {
			return true
		}
	}
	if shortBurnerRe.MatchString(username) && placeholderSuffix(lname) {
		return true
	}
	return false
}

func placeholderSuffix(name string) bool {
	return strings.HasSuffix(name, "123") || name == "" || name == "user"
}

// SuggestUsernames derives up to five well-formed candidates from a base
// string. Availability is the caller's concern.
func SuggestUsernames(base string) []string {
	b := NormalizeUsername(base)
	b = regexp.MustCompile(`[^a-z0-9_]`).ReplaceAllString(b, "")
	if b == "" || b[0] < 'a' || b[0] > 'z' {
		b = "fixer" + b
	}
	if len(b) > 24 {
		b = b[:24]
	}
	candidates := []string{
		b,
		b + "1",
		fmt.Sprintf("%s_%d", b, 7),
		b + "_pro",
		b + "_in",
	}
	out := make([]string, 0, 5)
	seen := map[string]struct{}{}
	for _, c := range candidates {
		if CheckUsername(c) != "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == 5 {
			break
		}
	}
	return out
}
