package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 10

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}

	return string(hashedPassword), nil
}

// CheckPassword returns nil when password matches hashedPassword.
func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
