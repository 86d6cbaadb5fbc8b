package rpcserver

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"

	"github.com/sat20-labs/tokenledger/token"
)

type Service struct {
	model *Model
}

func NewService(l *token.Ledger) *Service {
	return &Service{model: NewModel(l)}
}

func (s *Service) InitRouter(r *gin.Engine, basePath string) {
	r.GET(basePath+"/health", s.getHealth)

	// mutations
	r.POST(basePath+"/collection/limited", s.createCollection(true))
	r.POST(basePath+"/collection/unlimited", s.createCollection(false))
	r.POST(basePath+"/token/limited", s.createToken(true))
	r.POST(basePath+"/token/unlimited", s.createToken(false))
	r.POST(basePath+"/token/mint", s.mint)
	r.POST(basePath+"/token/burn", s.burn)
	r.POST(basePath+"/token/transfer", s.transfer)
	r.POST(basePath+"/inventory/init", s.initInventory)
	r.POST(basePath+"/inventory/slot", s.initSlot)

	// queries
	r.GET(basePath+"/balance", s.getBalance)
	r.GET(basePath+"/collection", s.getCollection)
	r.GET(basePath+"/collections", s.listCollections)
	r.GET(basePath+"/token", s.getTokenType)
	r.GET(basePath+"/tokens", s.listTokenTypes)
	r.GET(basePath+"/supply", s.getSupply)
	r.GET(basePath+"/events", s.getEvents)
}

type Rpc struct {
	service *Service
}

func NewRpc(l *token.Ledger) *Rpc {
	return &Rpc{service: NewService(l)}
}

func (s *Rpc) Start(rpcUrl, rpcProxy, rpcLogFile string, rateLimit int) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	var writers []io.Writer
	if rpcLogFile != "" {
		fileHook, err := rotatelogs.New(
			rpcLogFile+"/tokenledger.rpc.%Y%m%d%H%M.log",
			rotatelogs.WithLinkName(rpcLogFile+"/tokenledger.rpc.log"),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to create RotateFile hook, error %s", err)
		}
		writers = append(writers, fileHook)
	}
	writers = append(writers, os.Stdout)
	gin.DefaultWriter = io.MultiWriter(writers...)

	r.Use(logger.SetLogger(
		logger.WithLogger(logger.Fn(func(c *gin.Context, l zerolog.Logger) zerolog.Logger {
			return l.With().Str("client", c.ClientIP()).Logger()
		})),
	))

	corsConfig := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	corsConfig.OptionsResponseStatusCode = 200
	r.Use(cors.New(corsConfig))

	if rateLimit > 0 {
		lmt := tollbooth.NewLimiter(float64(rateLimit),
			&limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
		lmt.SetBurst(rateLimit * 2)
		r.Use(func(c *gin.Context) {
			if httpError := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpError != nil {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
				c.Abort()
				return
			}
			c.Next()
		})
	}

	s.service.InitRouter(r, rpcProxy)

	parts := strings.Split(rpcUrl, ":")
	var port string
	if len(parts) < 2 {
		rpcUrl += ":80"
		port = "80"
	} else {
		port = parts[1]
	}

	if err := checkPort(port); err != nil {
		return err
	}

	go r.Run(rpcUrl)
	return nil
}

func checkPort(port string) error {
	addr := fmt.Sprintf(":%s", port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %s is in use: %v", port, err)
	}
	l.Close()
	return nil
}
