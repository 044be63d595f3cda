package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"landlord/internal/domain"
)

// GameSnapshot is the exportable state of a Game. Restoring it rebuilds the
// game verbatim, including the round in progress.
type GameSnapshot struct {
	ID          string               `json:"id"`
	Seats       domain.Seats         `json:"seats"`
	BaseStake   int64                `json:"base_stake"`
	FirstBidder int                  `json:"first_bidder"`
	Redeals     int                  `json:"redeals"`
	Round       domain.RoundSnapshot `json:"round"`
	Settlement  *domain.Settlement   `json:"settlement,omitempty"`
}

// Snapshot exports the game.
func (s *Service) Snapshot(game *Game) (GameSnapshot, error) {
	if game == nil || game.Round == nil {
		return GameSnapshot{}, ErrNotPlaying
	}
	snap := GameSnapshot{
		ID:          game.ID,
		Seats:       game.Seats,
		BaseStake:   game.BaseStake,
		FirstBidder: game.FirstBidder,
		Redeals:     game.Redeals,
		Round:       game.Round.Snapshot(),
	}
	if game.Settlement != nil {
		settlement := *game.Settlement
		snap.Settlement = &settlement
	}
	return snap, nil
}

// RestoreGame rebuilds a game from a snapshot.
func (s *Service) RestoreGame(snap GameSnapshot) (*Game, error) {
	if snap.Seats.Occupied() < MinPlayersToStartGame {
		return nil, ErrTooFewPlayers
	}
	round, err := domain.RestoreRound(snap.Round)
	if err != nil {
		return nil, fmt.Errorf("restore round: %w", err)
	}
	game := &Game{
		ID:          snap.ID,
		Seats:       snap.Seats,
		BaseStake:   snap.BaseStake,
		Round:       round,
		FirstBidder: snap.FirstBidder,
		Redeals:     snap.Redeals,
	}
	if snap.Settlement != nil {
		settlement := *snap.Settlement
		game.Settlement = &settlement
	}
	return game, nil
}

var ErrInvalidSnapshotToken = errors.New("invalid snapshot token")

const snapshotClaim = "snap"

// SnapshotSigner seals game snapshots into HS256 tokens so a match can hand
// its state out and only accept it back unmodified.
type SnapshotSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSnapshotSigner(secret, issuer string, ttl time.Duration) *SnapshotSigner {
	return &SnapshotSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign encodes the snapshot as a signed token.
func (s *SnapshotSigner) Sign(snap GameSnapshot) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", fmt.Errorf("snapshot signer is not configured")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":         s.issuer,
		"sub":         snap.ID,
		"iat":         now.Unix(),
		snapshotClaim: string(raw),
	}
	if s.ttl > 0 {
		claims["exp"] = now.Add(s.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token signature and issuer and returns the snapshot.
func (s *SnapshotSigner) Verify(tokenString string) (GameSnapshot, error) {
	if s == nil || len(s.secret) == 0 {
		return GameSnapshot{}, fmt.Errorf("snapshot signer is not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return GameSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshotToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return GameSnapshot{}, ErrInvalidSnapshotToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return GameSnapshot{}, fmt.Errorf("%w: issuer", ErrInvalidSnapshotToken)
	}
	raw, ok := claims[snapshotClaim].(string)
	if !ok {
		return GameSnapshot{}, fmt.Errorf("%w: missing %s claim", ErrInvalidSnapshotToken, snapshotClaim)
	}

	var snap GameSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return GameSnapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshotToken, err)
	}
	return snap, nil
}
