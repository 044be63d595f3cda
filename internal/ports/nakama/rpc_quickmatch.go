package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"landlord/internal/config"
	"landlord/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest is the optional RPC payload selecting a stake tier.
type QuickMatchRequest struct {
	Tier string `json:"tier"`
}

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID   string `json:"match_id"`
	IsNew     bool   `json:"is_new"`
	BaseStake int64  `json:"base_stake"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// quickMatchQuery finds open lobbies of our game at the given stake.
func quickMatchQuery(baseStake int64) string {
	return fmt.Sprintf("+label.open:T +label.game:%s +label.phase:%s +label.base_stake:%d", domain.GameName, domain.PhaseLobby, baseStake)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			logger.Warn("rpcQuickMatch: Invalid payload: %v", err)
			return "", runtime.NewError("invalid quick match payload", 3)
		}
	}
	baseStake := config.GetGameConfig().BaseStake(req.Tier)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := domain.SeatCount - 1 // at least one seat left

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery(baseStake))
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{BaseStake: baseStake}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
	} else {
		// Seat/owner assignment happens in MatchJoin (server-authoritative).
		matchID, err := nk.MatchCreate(ctx, MatchNameLandlord, map[string]interface{}{"tier": req.Tier})
		if err != nil {
			logger.Error("MatchCreate error: %v", err)
			return "", err
		}
		resp.MatchID = matchID
		resp.IsNew = true
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
