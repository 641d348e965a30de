package services

import (
	"fmt"
	"log/slog"
	"time"

	"group-lab/auth"
	"group-lab/contract"
	"group-lab/domain"
	"group-lab/errors"

	"github.com/google/uuid"
)

type IAccountService interface {
	Register(username, email, password string) (domain.User, Token, error)
	Login(email, password string) (Token, error)
}

type AccountService struct {
	users         contract.IUserDirectory
	tokenDuration time.Duration
	log           *slog.Logger
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAccountService(users contract.IUserDirectory, tokenDuration time.Duration, log *slog.Logger) IAccountService {
	return &AccountService{users: users, tokenDuration: tokenDuration, log: log}
}

func (s *AccountService) Register(username, email, password string) (domain.User, Token, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules before any expensive cryptographic work
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.User{}, "", err
	}

	// 2. Hash the password using Argon2id
	// Done here so the directory never sees a plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if err = s.users.CreateUser(user); err != nil {
		return domain.User{}, "", err // Propagates ErrEmailTaken on duplicates
	}

	// 4. Generate the initial session token
	token, err := auth.GenerateToken(user.ID, []string{"user"}, s.tokenDuration)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	s.log.Info("user registered", slog.String("user_id", user.ID))
	return user, Token(token), nil
}

func (s *AccountService) Login(email, password string) (Token, error) {
	// 1. Retrieve the user by email
	user, err := s.users.UserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := auth.GenerateToken(user.ID, []string{"user"}, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
