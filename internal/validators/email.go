package validators

import (
	"net/mail"
	"strings"
)

func IsEmailValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// reject "Name <a@b>" forms, only bare addresses are accepted
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
