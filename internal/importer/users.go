package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUser is a seeded account for exercising the authenticated endpoints.
type DefaultUser struct {
	Username string
	Password string
}

// DefaultUsers are created at startup when fewer than that many users exist.
var DefaultUsers = []DefaultUser{
	{Username: "alice", Password: "password123"},
	{Username: "bob", Password: "password123"},
	{Username: "charlie", Password: "password123"},
}

// EnsureUsers creates the default accounts, skipping usernames that already
// exist. Passwords are stored bcrypt-hashed.
func (i *Importer) EnsureUsers(ctx context.Context) error {
	count, err := i.repo.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("check user count: %w", err)
	}
	if count >= int64(len(DefaultUsers)) {
		return nil
	}

	for _, u := range DefaultUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		created, err := i.repo.Users.CreateIfAbsent(ctx, u.Username, string(hash))
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.Username, err)
		}
		if created {
			i.logger.Info("user created", zap.String("username", u.Username))
		}
	}
	return nil
}
