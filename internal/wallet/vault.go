package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoStoredAccount is returned when no vault file exists on disk.
var ErrNoStoredAccount = errors.New("no stored account")

// ErrWrongPassword is returned when a password fails verification.
var ErrWrongPassword = errors.New("wrong password")

// vaultFile is the on-disk JSON format for the encrypted account vault.
type vaultFile struct {
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	EncryptedPhrase []byte    `json:"encrypted_phrase"`
	PasswordHash    []byte    `json:"password_hash"` // bcrypt
}

// Vault stores the recovery phrase (encrypted) and the login password hash
// for one account. One vault file holds one account.
type Vault struct {
	path string
}

// NewVault creates a vault backed by the given file path.
// The parent directory is created if it doesn't exist.
func NewVault(path string) (*Vault, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	return &Vault{path: path}, nil
}

// Exists reports whether a stored account is present.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Store writes the recovery phrase encrypted under the password, replacing
// any previous vault contents. A bcrypt hash of the password is stored
// alongside for login verification.
func (v *Vault) Store(phrase, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	encrypted, err := Encrypt([]byte(phrase), []byte(password), DefaultParams())
	if err != nil {
		return fmt.Errorf("encrypt phrase: %w", err)
	}

	vf := vaultFile{
		Version:         1,
		CreatedAt:       time.Now().UTC(),
		EncryptedPhrase: encrypted,
		PasswordHash:    hash,
	}
	data, err := json.MarshalIndent(&vf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	if err := os.WriteFile(v.path, data, 0600); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}

// VerifyPassword checks the password against the stored bcrypt hash.
func (v *Vault) VerifyPassword(password string) error {
	vf, err := v.read()
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(vf.PasswordHash, []byte(password)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// LoadPhrase decrypts and returns the stored recovery phrase.
func (v *Vault) LoadPhrase(password string) (string, error) {
	vf, err := v.read()
	if err != nil {
		return "", err
	}
	phrase, err := Decrypt(vf.EncryptedPhrase, []byte(password))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrongPassword, err)
	}
	return string(phrase), nil
}

// Remove deletes the vault file. Removing a missing vault is not an error.
func (v *Vault) Remove() error {
	if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove vault: %w", err)
	}
	return nil
}

func (v *Vault) read() (*vaultFile, error) {
	data, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoStoredAccount
		}
		return nil, fmt.Errorf("read vault: %w", err)
	}
	var vf vaultFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parse vault: %w", err)
	}
	return &vf, nil
}
