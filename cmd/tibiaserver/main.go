// Command tibiaserver is the server process: load configuration, connect
// to Postgres, load content, start the login and status endpoints, the
// dual TCP/WebSocket game transport, and the single simulation tick
// thread, then block until an OS signal asks for a graceful shutdown.
// Grounded on the donor's cmd/l1jgo/main.go wiring order (config, logger,
// DB, then listeners, then block-on-signal).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tibiaserver/server/internal/config"
	"github.com/tibiaserver/server/internal/content"
	"github.com/tibiaserver/server/internal/login"
	"github.com/tibiaserver/server/internal/logging"
	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/persist"
	"github.com/tibiaserver/server/internal/replay"
	"github.com/tibiaserver/server/internal/scripting"
	"github.com/tibiaserver/server/internal/session"
	"github.com/tibiaserver/server/internal/sim"
	"github.com/tibiaserver/server/internal/status"
	"github.com/tibiaserver/server/internal/transport"
	"github.com/tibiaserver/server/internal/worldstate"
)

// goldItemTypeID is the item template id representing currency, used by
// the shop HasFunds/Spend/Credit collaborators (spec.md §1: currency
// representation is a content concern, resolved here by counting one
// designated stackable item type rather than a separate ledger).
const goldItemTypeID = model.ItemTypeId(2148)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintln(os.Stderr, "tibiaserver: load config:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tibiaserver: build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	accounts := persist.NewAccountRepo(db)
	characters := persist.NewCharacterRepo(db)
	adminActions := persist.NewAdminActionRepo(db)

	itemTable, err := content.LoadItemTable(contentPath("items.yaml"))
	if err != nil {
		log.Fatal("load item table", zap.Error(err))
	}
	monsterTable, err := content.LoadMonsterTable(contentPath("monsters.yaml"))
	if err != nil {
		log.Fatal("load monster table", zap.Error(err))
	}
	spellTable, err := content.LoadSpellTable(contentPath("spells.yaml"))
	if err != nil {
		log.Fatal("load spell table", zap.Error(err))
	}
	mapIndex, err := content.LoadMapIndex(contentPath("map_index.yaml"))
	if err != nil {
		log.Fatal("load map index", zap.Error(err))
	}
	log.Info("content loaded",
		zap.Int("items", itemTable.Count()),
		zap.Int("monsters", monsterTable.Count()),
		zap.Int("spells", spellTable.Count()),
		zap.Int("zones", mapIndex.Count()),
	)

	engine, err := scripting.NewEngine(scriptsDir(), log)
	if err != nil {
		log.Fatal("load scripting engine", zap.Error(err))
	}
	defer engine.Close()
	calc := &scripting.MeleeCalculator{Engine: engine}
	ai := &scripting.MonsterDecider{Engine: engine}

	world := worldstate.New()
	mapIndex.SeedInto(world)

	history := replay.NewHistory()
	logins := login.NewSelectionRegistry(cfg.Login.SelectionTTL)
	runner := sim.NewRunner(history)
	registerSystems(runner, world, ai, calc, monsterTable)

	clock := sim.NewGameClock(cfg.Network.TickRate)
	tickStop := make(chan struct{})
	go clock.Run(runner, tickStop)

	statusSrv, err := status.NewServer(cfg.Status.BindAddress,
		func() status.Snapshot { return buildStatusSnapshot(cfg, world) },
		func(name string) bool { _, ok := world.PlayerByName(name); return ok },
		cfg.Status.LegacyEncoding, log)
	if err != nil {
		log.Fatal("bind status endpoint", zap.Error(err))
	}
	go statusSrv.AcceptLoop()
	defer statusSrv.Close()

	loginFlow := login.NewFlow(login.Config{
		WaitlistThreshold:  cfg.Login.WaitlistThreshold,
		WorldName:          cfg.Login.WorldName,
		WorldAddress:       cfg.Login.WorldAddress,
		AutoCreateAccounts: cfg.Login.AutoCreateAccounts,
	}, accounts, logins, func() int { return len(world.OnlinePlayerNames()) })

	loginTCP, err := transport.ListenTCP(cfg.Login.TCPBindAddress)
	if err != nil {
		log.Fatal("bind login tcp endpoint", zap.Error(err))
	}
	loginTCPSrv := login.NewTCPServer(loginTCP, loginFlow, log)
	go loginTCPSrv.AcceptLoop()
	defer loginTCPSrv.Close()

	loginWS, err := transport.ListenWebSocket(cfg.Login.WSBindAddress, nil)
	if err != nil {
		log.Fatal("bind login websocket endpoint", zap.Error(err))
	}
	loginWSSrv := login.NewWebSocketServer(loginWS, loginFlow, log)
	go loginWSSrv.AcceptLoop()
	defer loginWSSrv.Close()

	gameTCP, err := transport.ListenTCP(cfg.Network.TCPBindAddress)
	if err != nil {
		log.Fatal("bind game tcp endpoint", zap.Error(err))
	}
	defer gameTCP.Close()

	gameWS, err := transport.ListenWebSocket(cfg.Network.WSBindAddress, nil)
	if err != nil {
		log.Fatal("bind game websocket endpoint", zap.Error(err))
	}
	defer gameWS.Close()

	deps := session.Deps{
		World:       world,
		History:     history,
		Logins:      logins,
		Characters:  characters,
		Things:      world.ThingsAt,
		SpellLookup: spellTable.Resolve,
		Calc:        calc,
		Catalog:     func(model.CreatureId) []worldstate.ShopOffer { return nil },
		Now:         runner.CurrentTick,
		HasFunds:    func(id model.PlayerId, amount int32) bool { return goldBalance(world, id) >= amount },
		Spend:       func(id model.PlayerId, amount int32) { spendGold(world, id, amount) },
		Credit:      func(id model.PlayerId, amount int32) { creditGold(world, id, amount) },
		PlayerName:  func(id model.CreatureId) (string, bool) { return playerNameByCreatureID(world, id) },
		Log:         log,
		Shutdown:    func(reason string) { log.Warn("admin shutdown requested", zap.String("reason", reason)); stop() },
	}
	sessCfg := session.Config{
		TickLength:    cfg.Network.TickRate,
		IdleWarnAfter: cfg.Network.IdleWarnAfter,
		ReadTimeout:   cfg.Network.ReadTimeout,
		PingInterval:  cfg.Network.PingInterval,
	}

	rateLimiter := transport.NewRateLimiter(cfg.RateLimit.WebSocketPacketsPerSecond)

	go acceptTCPSessions(ctx, gameTCP, sessCfg, deps, log)
	go acceptWebSocketSessions(ctx, gameWS, sessCfg, deps, cfg.RateLimit.Enabled, rateLimiter, log)

	log.Info("tibiaserver started",
		zap.String("login_tcp", cfg.Login.TCPBindAddress),
		zap.String("game_tcp", cfg.Network.TCPBindAddress),
		zap.String("status", cfg.Status.BindAddress),
	)

	<-ctx.Done()
	close(tickStop)
	log.Info("tibiaserver shutting down")

	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	flushAdminActions(saveCtx, adminActions, log)
}

func contentPath(name string) string {
	dir := os.Getenv("TIBIA_CONTENT_DIR")
	if dir == "" {
		dir = "content"
	}
	return filepath.Join(dir, name)
}

func scriptsDir() string {
	dir := os.Getenv("TIBIA_SCRIPTS_DIR")
	if dir == "" {
		dir = "scripts"
	}
	return dir
}

func registerSystems(runner *sim.Runner, world *worldstate.World, ai worldstate.MonsterAI, calc worldstate.DamageCalculator, monsters *content.MonsterTable) {
	runner.Register(&sim.ConditionsSystem{World: world})
	runner.Register(&sim.StatusEffectsSystem{World: world})
	runner.Register(&sim.SkillTimersSystem{World: world})
	runner.Register(&sim.RaidsAndHomesSystem{
		World: world,
		// TickRaids calls this while already holding World's lock and does
		// the w.monsters/w.aoi registration itself afterward, so this must
		// not call any locking World method beyond the atomic-backed
		// NextCreatureID.
		SpawnMonster: func(spawn model.RaidSpawn) *model.Monster {
			return monsters.Spawn(world.NextCreatureID(), spawn.MonsterRace, spawn.Position)
		},
	})
	runner.Register(&sim.MapRefreshSystem{World: world})
	runner.Register(&sim.HousesSystem{World: world})
	runner.Register(&sim.CreatureAISystem{World: world, AI: ai, Calc: calc})
	runner.Register(&sim.CronSystem{World: world})
}

func buildStatusSnapshot(cfg *config.Config, world *worldstate.World) status.Snapshot {
	names := world.OnlinePlayerNames()
	return status.Snapshot{
		StartTime:     time.Unix(cfg.Server.StartTime, 0),
		IP:            cfg.Login.WorldAddress,
		Port:          0,
		Owner:         cfg.Status.Owner,
		MOTD:          cfg.Status.MOTD,
		PlayersOnline: len(names),
		PlayersMax:    cfg.Login.WaitlistThreshold,
		MapName:       cfg.Server.Name,
		Software:      "tibiaserver",
	}
}

func acceptTCPSessions(ctx context.Context, ln *transport.TCPListener, cfg session.Config, deps session.Deps, log *zap.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		peerIP := peerHost(conn.RemoteAddr())
		go runSession(ctx, conn, peerIP, cfg, deps, log)
	}
}

func acceptWebSocketSessions(ctx context.Context, ln *transport.WebSocketListener, cfg session.Config, deps session.Deps, rateLimited bool, limiter *transport.RateLimiter, log *zap.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		peerIP := peerHost(conn.RemoteAddr())
		if rateLimited && !limiter.Allow() {
			conn.Close()
			continue
		}
		go runSession(ctx, conn, peerIP, cfg, deps, log)
	}
}

func runSession(ctx context.Context, conn transport.Conn, peerIP string, cfg session.Config, deps session.Deps, log *zap.Logger) {
	defer conn.Close()
	if err := session.Run(ctx, conn, peerIP, cfg, deps); err != nil {
		log.Debug("session ended", zap.Error(err), zap.String("peer", peerIP))
	}
}

func peerHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func playerNameByCreatureID(world *worldstate.World, id model.CreatureId) (string, bool) {
	p, ok := world.Player(model.PlayerId(id))
	if !ok {
		return "", false
	}
	return p.Name, true
}

func goldBalance(world *worldstate.World, id model.PlayerId) int32 {
	p, ok := world.Player(id)
	if !ok {
		return 0
	}
	backpack := p.Inventory[model.SlotBackpack]
	if backpack == nil {
		return 0
	}
	var total int32
	for _, stack := range backpack.Contents {
		if stack.TypeID == goldItemTypeID {
			total += int32(stack.Count)
		}
	}
	return total
}

func spendGold(world *worldstate.World, id model.PlayerId, amount int32) {
	p, ok := world.Player(id)
	if !ok {
		return
	}
	backpack := p.Inventory[model.SlotBackpack]
	if backpack == nil {
		return
	}
	remaining := amount
	kept := backpack.Contents[:0]
	for _, stack := range backpack.Contents {
		if stack.TypeID == goldItemTypeID && remaining > 0 {
			if int32(stack.Count) <= remaining {
				remaining -= int32(stack.Count)
				continue
			}
			stack.Count -= uint16(remaining)
			remaining = 0
		}
		kept = append(kept, stack)
	}
	backpack.Contents = kept
}

func creditGold(world *worldstate.World, id model.PlayerId, amount int32) {
	p, ok := world.Player(id)
	if !ok || amount <= 0 {
		return
	}
	backpack := p.Inventory[model.SlotBackpack]
	if backpack == nil {
		return
	}
	backpack.Contents = append(backpack.Contents, model.ItemStack{TypeID: goldItemTypeID, Count: uint16(amount), Stackable: true})
}

func flushAdminActions(ctx context.Context, repo *persist.AdminActionRepo, log *zap.Logger) {
	if err := repo.MarkProcessed(ctx); err != nil {
		log.Warn("mark admin actions processed", zap.Error(err))
	}
}
