/*
Package randx provides functions for generating cryptographically secure random values.

It generates the anonymous display aliases shown in chat, one-time verification
codes for email confirmation, and standard UUID identifiers for messages.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// adjectives and creatures are the word lists aliases are built from.
// An alias is "<Adjective><Creature><1..9999>", e.g. "MysticPhoenix4821".
var adjectives = []string{
	"Mystic", "Silent", "Cosmic", "Neon", "Cyber", "Shadow", "Crystal",
	"Thunder", "Frost", "Storm", "Dark", "Bright", "Solar", "Lunar",
	"Stellar", "Quantum", "Nova", "Astral", "Crimson", "Azure", "Golden",
	"Silver", "Iron", "Steel", "Arctic", "Blazing", "Electric", "Sonic",
	"Turbo", "Ultra", "Mega", "Hyper", "Rapid", "Swift", "Bold", "Brave",
	"Fierce", "Wild", "Rogue", "Stealthy", "Noble", "Royal", "Ancient",
}

var creatures = []string{
	"Phoenix", "Dragon", "Griffin", "Unicorn", "Sphinx", "Kraken", "Hydra",
	"Chimera", "Centaur", "Minotaur", "Basilisk", "Cerberus", "Pegasus",
	"Leviathan", "Werewolf", "Vampire", "Elf", "Dwarf", "Goblin", "Troll",
	"Titan", "Oracle", "Specter", "Phantom", "Shadow", "Ghost", "Spirit",
	"Raven", "Wolf", "Falcon", "Eagle", "Hawk", "Viper", "Cobra", "Panther",
	"Jaguar", "Tiger", "Lion", "Bear", "Fox", "Owl", "Lynx", "Puma",
}

// OTPLength is the number of digits in a verification code.
const OTPLength = 6

// randInt returns a uniform random integer in [0, max) from crypto/rand.
func randInt(max int64) (int64, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return num.Int64(), nil
}

// Alias generates a random anonymous display alias. Uniqueness is NOT
// guaranteed here; callers must check the generated alias against the user
// store and retry on collision.
func Alias() (string, error) {
	ai, err := randInt(int64(len(adjectives)))
	if err != nil {
		return "", err
	}

	ci, err := randInt(int64(len(creatures)))
	if err != nil {
		return "", err
	}

	// 1..9999 suffix for extra entropy.
	n, err := randInt(9999)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%s%d", adjectives[ai], creatures[ci], n+1), nil
}

// OTP generates a fixed-length numeric one-time verification code.
func OTP() (string, error) {
	code := make([]byte, OTPLength)

	for i := range code {
		n, err := randInt(10)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n)
	}

	return string(code), nil
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// UserID generates a standard UUID v4 string to serve as a unique identifier for a user account.
func UserID() string {
	return uuid.New().String()
}
