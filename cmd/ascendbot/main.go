package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"github.com/bwmarrin/discordgo"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ascendbot/internal/bot"
	"ascendbot/internal/config"
	"ascendbot/internal/keepalive"
	"ascendbot/internal/pipeline"
	"ascendbot/internal/proxy"
	"ascendbot/internal/session"
	"ascendbot/internal/stt"
	"ascendbot/internal/summarize"
	"ascendbot/internal/voice"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configFile := cli.StringP("config", "c", "config.json", "Config file path")
	prefix := cli.String("prefix", "/", "Command prefix")
	addr := cli.StringP("addr", "a", ":8080", "Keep-alive listen address")
	sttBackend := cli.String("stt", "openai", "Transcription backend: openai or whisper")
	whisperModel := cli.String("whisper-model", "third_party/whisper.cpp/models/ggml-medium.bin", "Model path for the whisper backend")
	proxyAddr := cli.StringP("proxy", "p", "", "Optional SOCKS proxy address for the OpenAI API")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		log.Error("DISCORD_BOT_TOKEN not set")
		os.Exit(1)
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	log.Debug("Loaded secrets")

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if *proxyAddr != "" {
		httpClient, err := proxy.NewSocksClient(*proxyAddr)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(httpClient))
		log.Debug("Loaded proxy")
	}
	client := openai.NewClient(clientOpts...)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load config", "path", *configFile, "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded config", "path", *configFile)

	var transcriber stt.Transcriber
	switch *sttBackend {
	case "openai":
		transcriber = stt.NewOpenAI(client)
	case "whisper":
		w, err := stt.NewWhisper(*whisperModel, stt.WhisperOptions{Language: "auto"})
		if err != nil {
			log.Error("Failed to init whisper", "model", *whisperModel, "err", err)
			os.Exit(1)
		}
		defer w.Close()
		transcriber = w
	default:
		log.Error("Unknown stt backend", "stt", *sttBackend)
		os.Exit(1)
	}

	log.Debug("Loaded transcriber", "backend", *sttBackend)

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Error("Failed to create Discord session", "err", err)
		os.Exit(1)
	}
	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildVoiceStates |
		discordgo.IntentMessageContent

	gw := bot.NewDiscordGateway(dg)
	pipe := pipeline.New(transcriber, summarize.NewOpenAI(client), gw, cfg)
	b := bot.New(*prefix, gw, voice.NewGatewayDialer(dg), cfg, session.NewRegistry(), pipe)

	dg.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info("Logged in", "user", r.User.Username, "id", r.User.ID)
	})
	dg.AddHandler(b.HandleMessage)
	dg.AddHandler(b.HandleVoiceState)

	if err := dg.Open(); err != nil {
		log.Error("Failed to open Discord gateway", "err", err)
		os.Exit(1)
	}
	defer dg.Close()

	ka := keepalive.New(*addr)
	ka.Start()

	log.Info("Boot up - successful")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ka.Stop(ctx); err != nil {
		log.Error("Failed to stop keep-alive server", "err", err)
	}
}
