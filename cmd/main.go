package main

import (
	"net/http"
	"time"

	"BlackJack/config"
	"BlackJack/internal/auth"
	"BlackJack/internal/bank"
	"BlackJack/internal/game/manager"
	"BlackJack/internal/game/money"
	"BlackJack/internal/game/table"
	"BlackJack/internal/middleware"
	"BlackJack/internal/roomstore"
	"BlackJack/internal/storage"
	"BlackJack/internal/utils"
	"BlackJack/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. 初始化 Redis + Postgres
	//-------------------------------------------------------
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}
	if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
		utils.Error.Fatalf("Postgres init failed: %v", err)
	}

	playerBank, err := bank.NewPostgresBank(storage.DB)
	if err != nil {
		utils.Error.Fatalf("Bank init failed: %v", err)
	}

	//-------------------------------------------------------
	// 2. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 3. 初始化 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()

	//-------------------------------------------------------
	// 4. 初始化 GameManager（房间 → 引擎）
	//-------------------------------------------------------
	rules, err := tableRules()
	if err != nil {
		utils.Error.Fatalf("Game config invalid: %v", err)
	}
	gameMgr := manager.NewGameManager(hub, playerBank, roomstore.NewRedisRepo(storage.Rdb), manager.Options{
		Rules:       rules,
		TurnTimeout: time.Duration(config.C.Game.TurnSeconds) * time.Second,
		RoomTTL:     time.Duration(config.C.Game.RoomTTLSeconds) * time.Second,
	})

	// 玩家消息统一入口
	hub.OnIncoming = gameMgr.HandlePlayerMessage

	//-------------------------------------------------------
	// 5. 认证路由
	//-------------------------------------------------------
	secret := []byte(config.C.JWT.Secret)
	ah := auth.NewHandler(secret, playerBank, money.New(1000))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", ah.Login)
	}

	//-------------------------------------------------------
	// 6. 需要 JWT 的路由：WebSocket + 房间操作
	//-------------------------------------------------------
	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authed.GET("/ws", websocket.ServeWS(hub))
		authed.GET("/balance", ah.Balance)

		rh := manager.NewHandler(gameMgr)
		authed.POST("/rooms", rh.Create)
		authed.POST("/rooms/join", rh.Join)
		authed.POST("/rooms/leave", rh.Leave)
		authed.GET("/rooms/:code", rh.State)
		authed.POST("/rooms/:code/spectate", rh.Spectate)
	}

	//-------------------------------------------------------
	// 7. 启动服务器
	//-------------------------------------------------------
	utils.Info.Printf("Server running on %s", config.C.Server.Port)
	r.Run(config.C.Server.Port)
}

// tableRules assembles house rules from the loaded config.
func tableRules() (table.Rules, error) {
	minBet, err := money.Parse(config.C.Game.MinBet)
	if err != nil {
		return table.Rules{}, err
	}
	maxBet, err := money.Parse(config.C.Game.MaxBet)
	if err != nil {
		return table.Rules{}, err
	}
	bjPayout, err := money.Parse(config.C.Game.BlackjackPayout)
	if err != nil {
		return table.Rules{}, err
	}
	return table.Rules{
		SeatCount:   config.C.Game.SeatCount,
		Decks:       config.C.Game.Decks,
		Penetration: config.C.Game.Penetration,
		MinBet:      minBet,
		MaxBet:      maxBet,
		Payouts:     money.NewPayoutTable(bjPayout),
	}, nil
}
