package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/model"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
)

// slowReader delivers its content only after delay, like an operator typing.
type slowReader struct {
	r     io.Reader
	delay time.Duration
}

func (s *slowReader) Read(p []byte) (int, error) {
	time.Sleep(s.delay)
	s.delay = 0
	return s.r.Read(p)
}

func TestProvision_DeadlineStartsAfterPassword(t *testing.T) {
	old := storeTimeout
	storeTimeout = 50 * time.Millisecond
	t.Cleanup(func() { storeTimeout = old })

	svc := auth.NewService(repository.NewMemoryUserStore(), repository.NewMemoryTokenStore(),
		auth.NewJWTManager("test-secret", 15, 7), bcrypt.MinCost)
	create := func(ctx context.Context, in auth.RegisterInput) (*model.User, error) {
		require.NoError(t, ctx.Err(), "deadline must not have run while the password was typed")
		return svc.CreateStaff(ctx, in)
	}

	stdin := &slowReader{r: strings.NewReader("adminpass\n"), delay: 150 * time.Millisecond}
	var prompt bytes.Buffer
	u, err := provision(context.Background(), stdin, &prompt,
		auth.RegisterInput{Username: "admin", Email: "admin@example.com"}, create)
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.Contains(t, prompt.String(), "Password: ")

	_, err = svc.Login(context.Background(), "admin", "adminpass")
	assert.NoError(t, err, "password read from stdin without the newline")
}

func TestReadPassword_NonTerminal(t *testing.T) {
	assert.Equal(t, "s3cret", readPassword(strings.NewReader("s3cret\r\nignored\n")))
	assert.Equal(t, "last", readPassword(strings.NewReader("last")))
}
