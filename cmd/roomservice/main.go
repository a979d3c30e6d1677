// Command roomservice runs the authoritative coin-pusher room engine: one
// process owns every room, ticking them all from a single loop and
// talking to the gateway over length-prefixed TCP frames.
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Zombieliu/coinpusher/config"
	"github.com/Zombieliu/coinpusher/internal/manager"
	"github.com/Zombieliu/coinpusher/internal/netsvc"
	"github.com/Zombieliu/coinpusher/internal/protocol"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := loadConfig()
	log.Printf("room service starting: addr=%s tick_rate=%dHz", cfg.Addr, cfg.TickRateHz)

	mgr := manager.NewRoomManager()
	server := netsvc.NewServer(cfg.Addr, protocol.FormatMessagePack)

	go runTickLoop(mgr, server, cfg.TickRateHz)

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("room service: fatal bind failure: %v", err)
	}
}

// loadConfig reads ROOM_SERVICE_ADDR and TICK_RATE from the environment,
// falling back to spec defaults (127.0.0.1:9000, 30 Hz) when unset or
// unparseable.
func loadConfig() *config.ServerConfig {
	cfg := config.DefaultServerConfig()

	if addr := os.Getenv("ROOM_SERVICE_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if rateStr := os.Getenv("TICK_RATE"); rateStr != "" {
		if rate, err := strconv.Atoi(rateStr); err == nil && rate > 0 {
			cfg.TickRateHz = rate
		} else {
			log.Printf("room service: ignoring invalid TICK_RATE %q, using default %d", rateStr, cfg.TickRateHz)
		}
	}

	return cfg
}

// runTickLoop is the tick task (spec §5.2): it wakes on a periodic timer,
// drains the inbound queue non-blockingly, applies every drained message
// through the Room Manager, ticks every room once, then publishes every
// produced outbound message to the fan-out. Its only suspension point is
// the interval timer.
func runTickLoop(mgr *manager.RoomManager, server *netsvc.Server, tickRateHz int) {
	dt := float32(1.0) / float32(tickRateHz)
	interval := time.Second / time.Duration(tickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		for _, msg := range server.Inbound.DrainNonBlocking() {
			mgr.HandleMsgFromNode(msg)
		}

		for _, out := range mgr.TickAll(dt) {
			server.Broadcaster.Publish(out)
		}
	}
}
