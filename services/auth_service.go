package services

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"log/slog"
)

type IAuthService interface {
	Signup(req auth.SignupRequest) (Token, error)
	Login(req auth.LoginRequest) (Token, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, tokens *auth.TokenIssuer) IAuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens}
}

// Signup validates the request, stores the account with an argon2id hash and
// returns a first session token.
func (s *AuthService) Signup(req auth.SignupRequest) (Token, error) {
	// Validation happens before any expensive hashing
	if err := auth.ValidateSignup(req); err != nil {
		return "", err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(req.Username, req.FirstName, req.LastName, hashedPassword)
	if err != nil {
		return "", err
	}
	s.log.Info("Account created", "username", user.Username, "user_id", user.ID)

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

// Login returns ErrInvalidCredentials for unknown users and wrong passwords alike.
func (s *AuthService) Login(req auth.LoginRequest) (Token, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return "", err
	}

	user, err := s.userRepository.GetUserByUsername(req.Username)
	if err != nil {
		s.log.Debug("Login refused", "username", req.Username, "error", err)
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}
