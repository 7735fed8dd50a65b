// Command keygen prints fresh secrets for the VAULT_MASTER_KEY and JWT_SECRET
// environment variables.
package main

import (
	"fmt"
	"log"

	"github.com/dmitrymomot/lifevault/pkg/vaultcrypto"
)

func main() {
	masterKey, err := vaultcrypto.GenerateMasterKey()
	if err != nil {
		log.Fatalf("Failed to generate master key: %v", err)
	}
	jwtSecret, err := vaultcrypto.GeneratePassword(48)
	if err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}

	// Single quotes keep godotenv from expanding $ in the values.
	fmt.Printf("VAULT_MASTER_KEY='%s'\n", masterKey)
	fmt.Printf("JWT_SECRET='%s'\n", jwtSecret)
}
