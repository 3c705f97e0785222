package accounts

import (
	"regexp"
	"strings"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateRegister(cmd RegisterCommand) error {
	fields := map[string]string{}

	if strings.TrimSpace(cmd.Name) == "" {
		fields["name"] = "O campo nome é obrigatória"
	}
	if !emailPattern.MatchString(normalizeEmail(cmd.Email)) {
		fields["email"] = "Insira um email válido"
	}
	if len([]rune(cmd.Password)) < minPasswordLength {
		fields["password"] = "A senha deve ter pelo menos 6 caracteres"
	}

	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func validateCredentials(creds Credentials) error {
	fields := map[string]string{}

	if !emailPattern.MatchString(normalizeEmail(creds.Email)) {
		fields["email"] = "Insira um email válido"
	}
	if creds.Password == "" {
		fields["password"] = "O campo senha é obrigatório"
	}

	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
