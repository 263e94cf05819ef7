package domain

import "errors"

var (
	ErrLocationNotFound     = errors.New("location not found")
	ErrNoRoute              = errors.New("no route found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrNoReference          = errors.New("no reference location selected")
)

const (
	MsgLocationNotFound = "Location not found"
	MsgSomethingWrong   = "Something went wrong"
)

// UserMessage maps a primary search failure to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLocationNotFound) {
		return MsgLocationNotFound
	}
	return MsgSomethingWrong
}
