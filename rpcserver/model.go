package rpcserver

import (
	"github.com/sat20-labs/tokenledger/token"
)

// Model sits between the handlers and the ledger. Handlers only parse and
// answer; everything touching ledger state goes through here.
type Model struct {
	ledger *token.Ledger
}

func NewModel(l *token.Ledger) *Model {
	return &Model{ledger: l}
}

func (m *Model) GetEvents(owner, logName string, start uint64, limit int) ([]*token.Event, error) {
	switch logName {
	case token.LogCreate, token.LogMint, token.LogDeposit, token.LogWithdraw:
	default:
		return nil, errUnknownLog
	}
	return m.ledger.Events(owner, logName, start, limit)
}
