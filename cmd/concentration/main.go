// Command concentration plays the memory game in a terminal, against the bot or
// pass-and-play.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"

	"concentration/internal/app"
	"concentration/internal/bot"
	"concentration/internal/config"
	"concentration/internal/domain"
	"concentration/internal/ports/terminal"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func main() {
	_ = godotenv.Load()

	rt, err := config.LoadRuntime(nil)
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	mode := flag.String("mode", "", "Game mode: bot or local")
	cards := flag.Int("cards", 0, "Number of cards (even, at least 4)")
	players := flag.Int("players", 0, "Number of players in local mode")
	name := flag.String("name", "", "Your name in bot mode")
	level := flag.String("level", rt.BotLevel, "Bot level: easy, medium or hard")
	configPath := flag.String("config", rt.ConfigPath, "Path to the game config JSON")
	logLevel := flag.String("loglevel", rt.LogLevel, "Set logging level (debug, info, warn, error)")
	noColor := flag.Bool("no-color", false, "Disable colours")
	bell := flag.Bool("bell", false, "Ring the terminal bell on every flip")
	flag.Parse()

	lvl, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: !*noColor})
	logger := terminal.NewLogger(log)

	gameCfg, err := config.LoadGameConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *configPath, err)
	}

	var patch domain.SettingsPatch
	if *mode != "" {
		m := domain.Mode(*mode)
		if *mode == "local" {
			m = domain.ModeLocalMultiplayer
		}
		patch.Mode = &m
	}
	if *cards != 0 {
		patch.CardCount = cards
	}
	if *players != 0 {
		patch.PlayerCount = players
	}
	if *name != "" {
		patch.HumanName = name
	}
	settings := gameCfg.Settings().Merge(patch)

	levelName := *level
	if levelName == "" {
		levelName = gameCfg.BotLevel
	}
	botLevel, err := bot.ParseLevel(levelName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	engine, err := app.NewEngine(settings, app.Options{
		ResolveDelay: rt.ResolveDelay,
		Catalog:      gameCfg.Catalog(),
	})
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	defer engine.Close()

	out := color.Output
	var mu sync.Mutex
	palette := terminal.NewPalette(!*noColor)
	session := terminal.NewSession(engine, terminal.NewRenderer(palette), out, &mu, logger)
	engine.Subscribe(session.OnEvent)
	engine.Subscribe(app.FeedbackSubscriber(terminal.NewFeedback(out, &mu, palette, *bell)))

	agent, err := bot.NewAgent(bot.AgentConfig{
		Level:      botLevel,
		ThinkDelay: rt.BotThinkDelay,
		FlipDelay:  rt.BotFlipDelay,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	agent.Attach(engine)
	defer agent.Detach()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	palette.Header.Fprintln(out, "--- Concentration ---  (type help for commands)")
	session.PrintBoard()
	run(line, session, palette, out, &mu)
}

func run(line *liner.State, session *terminal.Session, palette terminal.Palette, out io.Writer, mu *sync.Mutex) {
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Fprintln(out)
				return
			}
			log.Errorf("Prompt failed: %v", err)
			return
		}

		cmd, err := terminal.ParseCommand(input)
		if errors.Is(err, terminal.ErrEmptyCommand) {
			continue
		}
		line.AppendHistory(strings.TrimSpace(input))
		if err != nil {
			warn(palette, out, mu, err)
			continue
		}

		quit, err := session.Execute(cmd)
		if err != nil {
			warn(palette, out, mu, err)
		}
		if quit {
			return
		}
	}
}

func warn(palette terminal.Palette, out io.Writer, mu *sync.Mutex, err error) {
	mu.Lock()
	defer mu.Unlock()
	palette.Warn.Fprintln(out, err)
}
