package rpcserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/sat20-labs/tokenledger/common"
	"github.com/sat20-labs/tokenledger/rpcserver/wire"
	"github.com/sat20-labs/tokenledger/token"
)

var errUnknownLog = errors.New("unknown event log name")

func okResp() wire.BaseResp {
	return wire.BaseResp{Code: 0, Msg: "ok"}
}

func fillErr(resp *wire.BaseResp, err error) {
	resp.Code = -1
	var terr *token.Error
	if errors.As(err, &terr) {
		resp.Msg = terr.Code + ": " + terr.Error()
		return
	}
	resp.Msg = err.Error()
}

func (s *Service) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, &wire.HealthStatusResp{
		Status:  "ok",
		Version: common.TOKEN_LEDGER_VERSION,
		DBVer:   common.LEDGER_DB_VERSION,
	})
}

func (s *Service) createCollection(limited bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := okResp()
		var req wire.CreateCollectionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			fillErr(&resp, err)
			c.JSON(http.StatusOK, resp)
			return
		}

		var err error
		if limited {
			err = s.model.ledger.CreateLimitedCollection(req.Creator, req.Name, req.Description, req.URI, req.Maximum)
		} else {
			err = s.model.ledger.CreateUnlimitedCollection(req.Creator, req.Name, req.Description, req.URI)
		}
		if err != nil {
			fillErr(&resp, err)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Service) createToken(limited bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := okResp()
		var req wire.CreateTokenReq
		if err := c.ShouldBindJSON(&req); err != nil {
			fillErr(&resp, err)
			c.JSON(http.StatusOK, resp)
			return
		}

		params := &token.TokenTypeParams{
			Collection:    req.Collection,
			Name:          req.Name,
			Description:   req.Description,
			URI:           req.URI,
			MonitorSupply: req.MonitorSupply,
			RoyaltyPayee:  req.RoyaltyPayee,
			RoyaltyRateBp: req.RoyaltyRateBp,
		}
		var err error
		if limited {
			_, err = s.model.ledger.CreateLimitedToken(req.Creator, params, req.Maximum, req.InitialAmount)
		} else {
			_, err = s.model.ledger.CreateUnlimitedToken(req.Creator, params, req.InitialAmount)
		}
		if err != nil {
			fillErr(&resp, err)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Service) mint(c *gin.Context) {
	resp := okResp()
	var req wire.MintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fillErr(&resp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := s.model.ledger.Mint(req.Authorizer, req.Destination, req.Identity(), req.Amount); err != nil {
		fillErr(&resp, err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) burn(c *gin.Context) {
	resp := okResp()
	var req wire.BurnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fillErr(&resp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := s.model.ledger.Burn(req.Owner, req.Identity(), req.Amount); err != nil {
		fillErr(&resp, err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) transfer(c *gin.Context) {
	resp := okResp()
	var req wire.TransferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fillErr(&resp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := s.model.ledger.DirectTransfer(req.Sender, req.Receiver, req.Identity(), req.Amount); err != nil {
		fillErr(&resp, err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) initInventory(c *gin.Context) {
	resp := okResp()
	var req wire.InitInventoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fillErr(&resp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := s.model.ledger.InitializeInventory(req.Account); err != nil {
		fillErr(&resp, err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) initSlot(c *gin.Context) {
	resp := okResp()
	var req wire.InitSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fillErr(&resp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	if err := s.model.ledger.InitializeSlotFor(req.Account, req.Identity()); err != nil {
		fillErr(&resp, err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) getBalance(c *gin.Context) {
	resp := &wire.BalanceResp{BaseResp: okResp()}
	var req wire.BalanceReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fillErr(&resp.BaseResp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Balance = s.model.ledger.BalanceOf(req.Owner, req.Identity())
	c.JSON(http.StatusOK, resp)
}

func (s *Service) getCollection(c *gin.Context) {
	resp := &wire.CollectionResp{BaseResp: okResp()}
	creator := c.Query("creator")
	name := c.Query("name")

	meta, err := s.model.ledger.GetCollection(creator, name)
	if err != nil {
		fillErr(&resp.BaseResp, err)
	} else {
		resp.Data = meta
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) listCollections(c *gin.Context) {
	resp := &wire.CollectionListResp{BaseResp: okResp()}
	metas, err := s.model.ledger.ListCollections(c.Query("creator"))
	if err != nil {
		fillErr(&resp.BaseResp, err)
	} else {
		resp.Data = metas
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) getTokenType(c *gin.Context) {
	resp := &wire.TokenTypeResp{BaseResp: okResp()}
	var req wire.IdentityReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fillErr(&resp.BaseResp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	meta, err := s.model.ledger.GetTokenType(req.Identity())
	if err != nil {
		fillErr(&resp.BaseResp, err)
	} else {
		resp.Data = meta
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) listTokenTypes(c *gin.Context) {
	resp := &wire.TokenTypeListResp{BaseResp: okResp()}
	metas, err := s.model.ledger.ListTokenTypes(c.Query("creator"))
	if err != nil {
		fillErr(&resp.BaseResp, err)
	} else {
		resp.Data = metas
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) getSupply(c *gin.Context) {
	resp := &wire.SupplyResp{BaseResp: okResp()}
	var req wire.IdentityReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fillErr(&resp.BaseResp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	supply, monitored, err := s.model.ledger.Supply(req.Identity())
	if err != nil {
		fillErr(&resp.BaseResp, err)
	} else {
		resp.Supply = supply
		resp.Monitored = monitored
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) getEvents(c *gin.Context) {
	resp := &wire.EventsResp{BaseResp: okResp()}
	var req wire.EventsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fillErr(&resp.BaseResp, err)
		c.JSON(http.StatusOK, resp)
		return
	}
	start, err := strconv.ParseUint(c.DefaultQuery("start", "0"), 10, 64)
	if err != nil {
		start = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		limit = 100
	}

	events, err := s.model.GetEvents(req.Owner, req.Log, start, limit)
	if err != nil {
		fillErr(&resp.BaseResp, err)
	} else {
		resp.Start = start
		resp.Total = len(events)
		resp.Data = events
	}
	c.JSON(http.StatusOK, resp)
}
