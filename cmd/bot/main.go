package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"swole.dev/internal/protocol"
	"swole.dev/internal/sim/muscle"
)

// bot connects, joins (or creates) a world, creates a few characters and
// keeps adjusting their muscles, printing what the server stored.
func main() {
	var (
		url       = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name      = flag.String("name", "bot", "client name")
		worldName = flag.String("world", "GYM", "world to use (created if missing)")
		count     = flag.Int("characters", 3, "characters to create")
		every     = flag.Duration("every", time.Second, "delay between workouts")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	c := &client{conn: conn}
	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: *name}); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := c.read(&welcome); err != nil {
		logger.Fatalf("WELCOME: %v", err)
	}
	logger.Printf("WELCOME session=%s worlds=%d", welcome.SessionID, len(welcome.Worlds))

	worldID := -1
	for _, w := range welcome.Worlds {
		if w.Name == *worldName {
			worldID = w.WorldID
		}
	}
	if worldID < 0 {
		res, err := c.call(protocol.CreateWorldMsg{Type: protocol.TypeCreateWorld, ProtocolVersion: protocol.Version, Name: *worldName})
		if err != nil || res.WorldID == nil {
			logger.Fatalf("create world: %v %+v", err, res)
		}
		worldID = *res.WorldID
	}

	var chars []int
	for i := 0; i < *count; i++ {
		res, err := c.call(protocol.CreateCharacterMsg{
			Type:            protocol.TypeCreateCharacter,
			ProtocolVersion: protocol.Version,
			WorldID:         worldID,
			Name:            fmt.Sprintf("%s-%d", *name, i),
		})
		if err != nil || res.CharacterID == nil {
			logger.Printf("create character: %v %+v", err, res)
			continue
		}
		chars = append(chars, *res.CharacterID)
	}
	logger.Printf("world=%d characters=%v", worldID, chars)
	if len(chars) == 0 {
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	tick := time.NewTicker(*every)
	defer tick.Stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	groups := []string{
		muscle.Chest.String(), muscle.Back.String(), muscle.Biceps.String(),
		muscle.Quads.String(), muscle.Calves.String(),
	}
	sides := []string{muscle.Left.String(), muscle.Right.String()}
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
		}
		id := chars[rng.Intn(len(chars))]
		mass := rng.Float64() * 1.5
		flex := rng.Float64()
		pump := rng.Float64()
		res, err := c.call(protocol.SetMuscleMsg{
			Type:            protocol.TypeSetMuscle,
			ProtocolVersion: protocol.Version,
			WorldID:         worldID,
			CharacterID:     id,
			Group:           groups[rng.Intn(len(groups))],
			Side:            sides[rng.Intn(len(sides))],
			Mass:            &mass,
			Flex:            &flex,
			Pump:            &pump,
		})
		if err != nil {
			logger.Printf("set muscle: %v", err)
			return
		}
		if !res.OK {
			logger.Printf("set muscle rejected: %s %s", res.Code, res.Message)
			continue
		}
		if err := conn.WriteJSON(protocol.GetCharacterMsg{Type: protocol.TypeGetCharacter, ProtocolVersion: protocol.Version, WorldID: worldID, CharacterID: id}); err != nil {
			return
		}
		var ch protocol.CharacterMsg
		if err := c.read(&ch); err != nil {
			return
		}
		for _, m := range ch.Muscles {
			logger.Printf("%s %s/%s mass=%.3f(%d) flex=%.3f(%d) pump=%.3f(%d)",
				ch.Name, m.Group, m.Side, m.Mass, m.MassRaw, m.Flex, m.FlexRaw, m.Pump, m.PumpRaw)
		}
	}
}

type client struct {
	conn *websocket.Conn
}

func (c *client) read(v any) error {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(msg, v)
}

func (c *client) call(req any) (protocol.ResultMsg, error) {
	var res protocol.ResultMsg
	if err := c.conn.WriteJSON(req); err != nil {
		return res, err
	}
	if err := c.read(&res); err != nil {
		return res, err
	}
	if res.Type != protocol.TypeResult {
		return res, fmt.Errorf("unexpected %s", res.Type)
	}
	return res, nil
}
