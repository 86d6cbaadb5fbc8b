package wire

import "github.com/sat20-labs/tokenledger/token"

type BaseResp struct {
	Code int    `json:"code" example:"0"`
	Msg  string `json:"msg" example:"ok"`
}

type ListResp struct {
	Start uint64 `json:"start" example:"0"`
	Total int    `json:"total" example:"2"`
}

type HealthStatusResp struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	DBVer   string `json:"dbVersion"`
}

// IdentityReq names one token type. Used standalone by queries and embedded
// by the mutation requests.
type IdentityReq struct {
	Creator    string `json:"creator" form:"creator" binding:"required"`
	Collection string `json:"collection" form:"collection" binding:"required"`
	Name       string `json:"name" form:"name" binding:"required"`
}

func (r *IdentityReq) Identity() token.AssetIdentity {
	return token.NewAssetIdentity(r.Creator, r.Collection, r.Name)
}

type CreateCollectionReq struct {
	Creator     string `json:"creator" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	URI         string `json:"uri"`
	Maximum     uint64 `json:"maximum"` // required for the limited variant
}

type CreateTokenReq struct {
	IdentityReq
	Description   string `json:"description"`
	URI           string `json:"uri"`
	MonitorSupply bool   `json:"monitorSupply"`
	RoyaltyPayee  string `json:"royaltyPayee"`
	RoyaltyRateBp uint64 `json:"royaltyRateBp"`
	Maximum       uint64 `json:"maximum"` // required for the limited variant
	InitialAmount uint64 `json:"initialAmount"`
}

type MintReq struct {
	IdentityReq
	Authorizer  string `json:"authorizer" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Amount      uint64 `json:"amount" binding:"required"`
}

type BurnReq struct {
	IdentityReq
	Owner  string `json:"owner" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

type TransferReq struct {
	IdentityReq
	Sender   string `json:"sender" binding:"required"`
	Receiver string `json:"receiver" binding:"required"`
	Amount   uint64 `json:"amount" binding:"required"`
}

type InitInventoryReq struct {
	Account string `json:"account" binding:"required"`
}

type InitSlotReq struct {
	IdentityReq
	Account string `json:"account" binding:"required"`
}

type BalanceReq struct {
	IdentityReq
	Owner string `form:"owner" binding:"required"`
}

type BalanceResp struct {
	BaseResp
	Balance uint64 `json:"balance"`
}

type CollectionResp struct {
	BaseResp
	Data *token.CollectionMeta `json:"data"`
}

type CollectionListResp struct {
	BaseResp
	Data []*token.CollectionMeta `json:"data"`
}

type TokenTypeResp struct {
	BaseResp
	Data *token.TokenTypeMeta `json:"data"`
}

type TokenTypeListResp struct {
	BaseResp
	Data []*token.TokenTypeMeta `json:"data"`
}

type SupplyResp struct {
	BaseResp
	Supply    uint64 `json:"supply"`
	Monitored bool   `json:"monitored"`
}

type EventsReq struct {
	Owner string `form:"owner" binding:"required"`
	Log   string `form:"log" binding:"required"` // create, mint, deposit, withdraw
}

type EventsResp struct {
	BaseResp
	ListResp
	Data []*token.Event `json:"data"`
}
