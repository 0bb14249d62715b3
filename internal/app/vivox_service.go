package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VivoxService mints short-lived HS256 tokens so clients can join the voice
// channel attached to their game room.
type VivoxService struct {
	secret string
	issuer string
	domain string
}

const (
	VivoxTokenActionLogin = "login"
	VivoxTokenActionJoin  = "join"

	vivoxTokenTTL = time.Hour
)

// NewVivoxService builds the token service from deployment credentials.
func NewVivoxService(secret, issuer, domain string) *VivoxService {
	return &VivoxService{secret: secret, issuer: issuer, domain: domain}
}

// GenerateToken signs a token for the given user and action. For join
// tokens, roomCode selects the room's voice channel.
func (s *VivoxService) GenerateToken(user, action, roomCode string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("vivox service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", fmt.Errorf("vivox config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, roomCode, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": time.Now().Add(vivoxTokenTTL).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VivoxService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

// Room voice channels are group channels named by room code.
func (s *VivoxService) channelURI(roomCode string) string {
	return "sip:confctl-g-shanghai-" + roomCode + "@" + s.domain
}

func (s *VivoxService) targetURI(action, roomCode, userURI string) (string, error) {
	switch action {
	case VivoxTokenActionLogin:
		return userURI, nil
	case VivoxTokenActionJoin:
		if roomCode == "" {
			return "", fmt.Errorf("room code is required for join tokens")
		}
		return s.channelURI(roomCode), nil
	default:
		return "", fmt.Errorf("unsupported vivox action: %s", action)
	}
}
