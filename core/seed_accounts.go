package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type seedDoc struct {
	Accounts []Credential `yaml:"accounts"`
}

// ParseSeedAccounts decodes a seed file of the form
//
//	accounts:
//	  - username: alice
//	    password: pw1
func ParseSeedAccounts(b []byte) ([]Credential, error) {
	var doc seedDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	for i, a := range doc.Accounts {
		if strings.TrimSpace(a.Username) == "" {
			return nil, fmt.Errorf("seed account #%d: username is required", i+1)
		}
	}
	return doc.Accounts, nil
}

// SeedAccounts creates the accounts listed in the YAML file at path.
// It is idempotent: accounts that already exist are left untouched.
// Returns the number of accounts created.
func SeedAccounts(ctx context.Context, store CredentialStore, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	accounts, err := ParseSeedAccounts(b)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range accounts {
		if err := store.Put(ctx, a.Username, a.Password); err != nil {
			if errors.Is(err, ErrDuplicateAccount) {
				continue
			}
			return created, err
		}
		created++
	}
	log.Printf("seeded %d of %d accounts from %s", created, len(accounts), path)
	return created, nil
}
