package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DefaultServer = "http://localhost:8080"

// Profile - адрес сервера и токен сессии терминального клиента
type Profile struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`
}

func DefaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("домашний каталог: %w", err)
	}
	return filepath.Join(home, ".config", "planner", "profile.yml"), nil
}

// LoadProfile читает профиль; отсутствующий файл - профиль по умолчанию без токена
func LoadProfile(path string) (Profile, error) {
	profile := Profile{Server: DefaultServer}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return profile, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("чтение профиля: %w", err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("разбор профиля %s: %w", path, err)
	}
	if profile.Server == "" {
		profile.Server = DefaultServer
	}
	return profile, nil
}

// SaveProfile пишет профиль с правами 0600: в нём токен сессии
func SaveProfile(path string, profile Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("создание каталога профиля: %w", err)
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("кодирование профиля: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("запись профиля: %w", err)
	}
	return nil
}
