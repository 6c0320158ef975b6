package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	"fooddelivery/internal/repository/users_repo"
)

// userRepository keeps the registry in memory and mirrors it to a JSON file
// mapping email to user record.
type userRepository struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository(path string, l *zap.Logger) users_repo.UserRepository {
	return &userRepository{
		path:   path,
		logger: l,
		users:  make(map[string]domain.User),
	}
}

// Load replaces the in-memory registry with the file contents. A missing
// file yields an empty registry.
func (r *userRepository) Load(_ context.Context) error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Info("User registry file not found, starting empty", zap.String("path", r.path))
			r.mu.Lock()
			r.users = make(map[string]domain.User)
			r.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read user registry %s: %w", r.path, err)
	}

	users := make(map[string]domain.User)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &users); err != nil {
			return fmt.Errorf("failed to decode user registry %s: %w", r.path, err)
		}
	}
	for email, u := range users {
		u.Email = email
		users[email] = u
	}

	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	r.logger.Info("User registry loaded", zap.String("path", r.path), zap.Int("users", len(users)))
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return domain.ErrEmailExists
	}
	r.users[user.Email] = *user
	if err := r.save(); err != nil {
		delete(r.users, user.Email)
		return err
	}
	return nil
}

// save rewrites the whole registry. The file is replaced atomically so a
// crash never leaves a truncated registry behind. Callers hold r.mu.
func (r *userRepository) save() error {
	data, err := json.MarshalIndent(r.users, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode user registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp registry file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write user registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close user registry: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace user registry %s: %w", r.path, err)
	}
	return nil
}
