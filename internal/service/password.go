package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordEncoderPlain  = "plain"
	PasswordEncoderBcrypt = "bcrypt"
)

// PasswordEncoder turns the submitted password into the value stored in
// users.password.
type PasswordEncoder interface {
	Encode(password string) (string, error)
}

// PlainPasswordEncoder stores the password as submitted.
type PlainPasswordEncoder struct{}

func (PlainPasswordEncoder) Encode(password string) (string, error) {
	return password, nil
}

type BcryptPasswordEncoder struct {
	Cost int
}

func (e BcryptPasswordEncoder) Encode(password string) (string, error) {
	cost := e.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

func NewPasswordEncoder(name string) (PasswordEncoder, error) {
	switch name {
	case "", PasswordEncoderPlain:
		return PlainPasswordEncoder{}, nil
	case PasswordEncoderBcrypt:
		return BcryptPasswordEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown password encoder %q", name)
	}
}
