package main

import (
	"github.com/sat20-labs/tokenledger/common"
	"github.com/sat20-labs/tokenledger/config"
	"github.com/sat20-labs/tokenledger/db"
	"github.com/sat20-labs/tokenledger/rpcserver"
	"github.com/sat20-labs/tokenledger/token"
)

func init() {
	config.InitSigInt()
}

func main() {
	yamlcfg := config.InitConfig("")
	if yamlcfg == nil {
		return
	}
	config.InitLog(yamlcfg)

	common.Log.Info("Starting...")
	defer func() {
		config.ReleaseRes()
		common.Log.Info("shut down")
	}()

	kv, err := db.Open(yamlcfg.DB.Engine, yamlcfg.DB.Path)
	if err != nil {
		common.Log.Error(err)
		return
	}
	defer kv.Close()

	ledger := token.NewLedger(kv, yamlcfg.Ledger.SelfCheck)
	defer ledger.Close()

	_, err = InitRpcService(yamlcfg, ledger)
	if err != nil {
		common.Log.Error(err)
		return
	}

	stopChan := make(chan bool)
	cb := func() {
		common.Log.Info("handle SIGINT for close ledger")
		stopChan <- true
	}
	config.RegistSigIntFunc(cb)
	common.Log.Info("token ledger serving...")
	<-stopChan

	common.Log.Info("prepare to release resource...")
}

func InitRpcService(conf *config.YamlConf, ledger *token.Ledger) (*rpcserver.Rpc, error) {
	rpcService := conf.RPCService
	rpc := rpcserver.NewRpc(ledger)
	err := rpc.Start(rpcService.Addr, rpcService.Proxy, rpcService.LogPath, rpcService.RateLimit)
	if err != nil {
		return rpc, err
	}
	common.Log.Info("rpc started")
	return rpc, nil
}
