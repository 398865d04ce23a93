// Package domain contains the room aggregate and its participants.
// No transport or timer handles live here.
package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxDisplayNameLen = 32
	MaxRefLen         = 512
)

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
)

type MemberID string

type Member struct {
	ID          MemberID
	DisplayName string
	AvatarRef   string
	Slot        int
	IsHost      bool
	Connected   bool
	Ready       bool
	LatencyMs   *int
	JoinedAt    time.Time
}

// NewMember validates the display name and issues a fresh member id.
// The member starts disconnected and without a slot.
func NewMember(displayName, avatarRef string, now time.Time) (*Member, error) {
	name, err := NormalizeName(displayName)
	if err != nil {
		return nil, err
	}
	return &Member{
		ID:          MemberID(uuid.NewString()),
		DisplayName: name,
		AvatarRef:   Truncate(strings.TrimSpace(avatarRef), MaxRefLen),
		JoinedAt:    now,
	}, nil
}

// NormalizeName collapses whitespace runs and enforces the length bounds.
func NormalizeName(name string) (string, error) {
	name = CollapseSpaces(name)
	if name == "" {
		return "", ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
