package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finsalud/finbot/internal/api"
	"github.com/finsalud/finbot/internal/audio"
	"github.com/finsalud/finbot/internal/dispatch"
	"github.com/finsalud/finbot/internal/flow"
	"github.com/finsalud/finbot/internal/messaging"
	"github.com/finsalud/finbot/internal/nlp"
	"github.com/finsalud/finbot/internal/store"
	"github.com/finsalud/finbot/internal/twiliowa"
	"github.com/finsalud/finbot/internal/util"
	"github.com/finsalud/finbot/internal/wacloud"
	"github.com/finsalud/finbot/internal/wameow"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for finbot state data
	DefaultStateDir = "/var/lib/finbot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "finbot.db"
	// DefaultDeviceDBFileName is the default whatsmeow device database filename
	DefaultDeviceDBFileName = "whatsmeow.db"
)

// Transport names accepted by --transport.
const (
	transportCloud  = "cloud"
	transportMeow   = "meow"
	transportTwilio = "twilio"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	slog.Info("Bootstrapping finbot", "transport", *flags.transport)
	if err := run(flags); err != nil {
		slog.Error("finbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("finbot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL      string
	StateDir         string
	OpenAIKey        string
	APIAddr          string
	Transport        string
	AccessToken      string
	PhoneNumberID    string
	VerifyToken      string
	DeviceDSN        string
	VoiceProbability float64
	EnrichmentOn     bool
}

// Flags holds command line flag values
type Flags struct {
	transport     *string
	stateDir      *string
	dbDSN         *string
	openaiKey     *string
	apiAddr       *string
	accessToken   *string
	phoneNumberID *string
	verifyToken   *string
	deviceDSN     *string
	qrOutput      *string
	numeric       *bool
	voiceProb     *float64
	enrichment    *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StateDir:         os.Getenv("FINBOT_STATE_DIR"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		APIAddr:          os.Getenv("API_ADDR"),
		Transport:        os.Getenv("FINBOT_TRANSPORT"),
		AccessToken:      os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		PhoneNumberID:    os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		VerifyToken:      os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		DeviceDSN:        os.Getenv("WHATSAPP_DB_DSN"),
		VoiceProbability: util.ParseFloatEnv("VOICE_PROBABILITY", messaging.DefaultVoiceProbability),
		EnrichmentOn:     util.ParseBoolEnv("NLP_ENRICHMENT", true),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No FINBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.Transport == "" {
		config.Transport = transportCloud
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.DeviceDSN == "" {
		config.DeviceDSN = filepath.Join(config.StateDir, DefaultDeviceDBFileName)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"FINBOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"FINBOT_TRANSPORT", config.Transport,
		"WHATSAPP_ACCESS_TOKEN_SET", config.AccessToken != "",
		"WHATSAPP_PHONE_NUMBER_ID_SET", config.PhoneNumberID != "",
		"WHATSAPP_VERIFY_TOKEN_SET", config.VerifyToken != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		transport:     flag.String("transport", config.Transport, "messaging transport: cloud, meow or twilio (overrides $FINBOT_TRANSPORT)"),
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for finbot data (overrides $FINBOT_STATE_DIR)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "company database DSN (overrides $DATABASE_URL)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for voice handling (overrides $OPENAI_API_KEY)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		accessToken:   flag.String("access-token", config.AccessToken, "WhatsApp Cloud API access token (overrides $WHATSAPP_ACCESS_TOKEN)"),
		phoneNumberID: flag.String("phone-number-id", config.PhoneNumberID, "WhatsApp Cloud API phone number ID (overrides $WHATSAPP_PHONE_NUMBER_ID)"),
		verifyToken:   flag.String("verify-token", config.VerifyToken, "webhook verification token (overrides $WHATSAPP_VERIFY_TOKEN)"),
		deviceDSN:     flag.String("device-db-dsn", config.DeviceDSN, "whatsmeow device database DSN (overrides $WHATSAPP_DB_DSN)"),
		qrOutput:      flag.String("qr-output", "", "path to write login QR code (meow transport)"),
		numeric:       flag.Bool("numeric-code", false, "use numeric login code instead of QR code (meow transport)"),
		voiceProb:     flag.Float64("voice-probability", config.VoiceProbability, "probability of attaching a voice note to replies (overrides $VOICE_PROBABILITY)"),
		enrichment:    flag.Bool("nlp-enrichment", config.EnrichmentOn, "attach NLP enrichment to registrations (overrides $NLP_ENRICHMENT)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"transport", *flags.transport,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"voiceProb", *flags.voiceProb,
		"enrichment", *flags.enrichment)

	return flags
}

func run(flags Flags) error {
	companyStore, err := buildCompanyStore(*flags.dbDSN)
	if err != nil {
		return err
	}
	defer companyStore.Close()

	// The audio pipeline is optional: without an OpenAI key the bot still
	// handles text, replying to voice notes with an apology.
	var pipeline *audio.Pipeline
	if *flags.openaiKey != "" {
		pipeline, err = audio.NewPipeline(audio.WithAPIKey(*flags.openaiKey))
		if err != nil {
			return err
		}
	} else {
		slog.Warn("No OpenAI API key configured; voice notes will not be transcribed or synthesized")
	}

	sender, fetcher, err := buildTransport(flags)
	if err != nil {
		return err
	}

	engineOpts := []flow.Option{
		flow.WithVoicePolicy(messaging.NewVoicePolicy(messaging.WithProbability(*flags.voiceProb))),
	}
	if !*flags.enrichment {
		engineOpts = append(engineOpts, flow.WithEnricher(nlp.NewNoop()))
	}
	if pipeline != nil {
		engineOpts = append(engineOpts, flow.WithSynthesizer(pipeline))
	}
	engine := flow.NewEngine(companyStore, sender, engineOpts...)

	dispatchOpts := []dispatch.Option{}
	if pipeline != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithTranscriber(pipeline))
	}
	if fetcher != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithAudioFetcher(fetcher))
	}
	dispatcher := dispatch.NewDispatcher(engine, sender, store.NewDedupLedger(), dispatchOpts...)

	apiOpts := []api.Option{api.WithVerifyToken(*flags.verifyToken)}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	server, err := api.NewServer(dispatcher, apiOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// buildCompanyStore selects the database backend from the DSN shape.
func buildCompanyStore(dsn string) (store.CompanyStore, error) {
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Info("Using PostgreSQL company store")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Info("Using SQLite company store", "path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}

// buildTransport wires the selected messaging transport. The audio fetcher is
// only available on the Cloud API transport; the others return nil and voice
// notes get an apology reply.
func buildTransport(flags Flags) (messaging.Sender, dispatch.AudioFetcher, error) {
	switch *flags.transport {
	case transportCloud:
		client, err := wacloud.NewClient(
			wacloud.WithAccessToken(*flags.accessToken),
			wacloud.WithPhoneNumberID(*flags.phoneNumberID),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	case transportMeow:
		opts := []wameow.Option{wameow.WithDBDSN(*flags.deviceDSN)}
		if *flags.qrOutput != "" {
			opts = append(opts, wameow.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			opts = append(opts, wameow.WithNumericCode())
		}
		sender, err := wameow.NewSender(opts...)
		if err != nil {
			return nil, nil, err
		}
		return sender, nil, nil
	case transportTwilio:
		client, err := twiliowa.NewClient()
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q (expected cloud, meow or twilio)", *flags.transport)
	}
}
