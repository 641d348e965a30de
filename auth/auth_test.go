package auth

import (
	"strings"
	"testing"
	"time"

	"group-lab/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "UnMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Negative comparison with a wrong password
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_RejectsMalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-a-hash")
	req.Error(err)

	_, err = ComparePassword("whatever", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"alice", "test@example.com", "ComplexPass123!"}, nil},
		{"Invalid email", RegisterRequest{"alice", "notanemail", "ComplexPass123!"}, errors.ErrInvalidRegistration},
		{"Username too short", RegisterRequest{"al", "test@example.com", "ComplexPass123!"}, errors.ErrInvalidRegistration},
		{"Password too short", RegisterRequest{"alice", "test@example.com", "Short1!"}, errors.ErrInvalidRegistration},
		{"Missing digit", RegisterRequest{"alice", "test@example.com", "NoDigitsHerePass!"}, errors.ErrInvalidPassword},
		{"Missing special char", RegisterRequest{"alice", "test@example.com", "NoSpecialChar123"}, errors.ErrInvalidPassword},
		{"Missing uppercase", RegisterRequest{"alice", "test@example.com", "nouppercase12345!"}, errors.ErrInvalidPassword},
		{"Password too long (edge case)", RegisterRequest{"alice", "test@example.com", strings.Repeat("a", 73)}, errors.ErrInvalidRegistration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-42", []string{"user"}, time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)
	req.Equal("group-lab", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-42", []string{"user"}, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("definitely.not.a-jwt")
	require.Error(t, err)
}

// BenchmarkHashPassword measures the CPU cost of one hash with the
// configured parameters.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
