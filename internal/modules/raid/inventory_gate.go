package raid

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/liangdas/mqant/module"

	"tsu-raid/internal/model/raidmodel"
)

// rpcInventoryGate 通过 mqant RPC 调用背包模块做容量检查
// 背包模块不可用时由调用方按"容量充足"降级处理
type rpcInventoryGate struct {
	app        module.App
	caller     module.RPCModule
	moduleType string
}

type canAcceptRequest struct {
	ParticipantID string           `json:"participant_id"`
	Items         []raidmodel.Item `json:"items"`
}

type canAcceptResponse struct {
	CanAccept bool `json:"can_accept"`
}

func (g *rpcInventoryGate) CanAccept(ctx context.Context, participantID string, items []raidmodel.Item) (bool, error) {
	payload, err := json.Marshal(&canAcceptRequest{
		ParticipantID: participantID,
		Items:         items,
	})
	if err != nil {
		return false, fmt.Errorf("marshal request failed: %w", err)
	}

	result, errStr := g.app.Invoke(g.caller, g.moduleType, "CanAcceptItems", payload)
	if errStr != "" {
		return false, fmt.Errorf("inventory rpc failed: %s", errStr)
	}

	respBytes, ok := result.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected rpc response type %T", result)
	}

	resp := &canAcceptResponse{}
	if err := json.Unmarshal(respBytes, resp); err != nil {
		return false, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return resp.CanAccept, nil
}
