package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
	maxUsernameLength    = 80
)

var (
	errInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")

	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
)

type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (req *RegisterRequest) Validate() error {
	req.Username = strings.TrimSpace(req.Username)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.RuneLength(1, maxUsernameLength)),
		validation.Field(&req.Password, validation.Required, validation.By(checkPassword)),
	)
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (req *LoginRequest) Validate() error {
	req.Username = strings.TrimSpace(req.Username)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

func checkPassword(value interface{}) error {
	password, _ := value.(string)

	ok, err := passwordExp.MatchString(password)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
}
