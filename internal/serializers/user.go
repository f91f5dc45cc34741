package serializers

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"yatube/internal/models"
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	ID       uint   `json:"id"`
}

func NewUser(u *models.User) User {
	return User{Email: u.Email, Username: u.Username, ID: u.ID}
}

// Registration is a validated sign-up request.
type Registration struct {
	Username string
	Email    string
	Password string
}

func DecodeRegistration(body io.Reader) (*Registration, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	errs := ValidationError{}
	reg := &Registration{}

	if username := obj.text("username", true, errs); username != nil {
		if utf8.RuneCountInString(*username) > 150 || !usernameRegex.MatchString(*username) {
			errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		}
		reg.Username = *username
	}

	if !obj.isNull("email") {
		if email := obj.text("email", false, errs); email != nil {
			if !strings.Contains(*email, "@") {
				errs.Add("email", "Enter a valid email address.")
			}
			reg.Email = *email
		}
	}

	if password := obj.text("password", true, errs); password != nil {
		switch {
		case utf8.RuneCountInString(*password) < 8:
			errs.Add("password", "This password is too short. It must contain at least 8 characters.")
		case strings.Trim(*password, "0123456789") == "":
			errs.Add("password", "This password is entirely numeric.")
		}
		reg.Password = *password
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Credentials is a username/password login body.
type Credentials struct {
	Username string
	Password string
}

func DecodeCredentials(body io.Reader) (*Credentials, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	errs := ValidationError{}
	username := obj.text("username", true, errs)
	password := obj.text("password", true, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Credentials{Username: *username, Password: *password}, nil
}

// DecodeToken reads the single token field of the JWT refresh and verify
// bodies; field is "refresh" or "token".
func DecodeToken(body io.Reader, field string) (string, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return "", err
	}
	errs := ValidationError{}
	token := obj.text(field, true, errs)
	if err := errs.Err(); err != nil {
		return "", err
	}
	return *token, nil
}
