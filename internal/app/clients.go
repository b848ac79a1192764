package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/deangilmoreremix/smartcrm-backend/internal/clients/gemini"
	"github.com/deangilmoreremix/smartcrm-backend/internal/clients/openai"
	"github.com/deangilmoreremix/smartcrm-backend/internal/clients/sendgrid"
	"github.com/deangilmoreremix/smartcrm-backend/internal/clients/twilio"
	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
	"github.com/deangilmoreremix/smartcrm-backend/internal/realtime/bus"
)

type Clients struct {
	Bus      bus.Bus
	OpenAI   openai.Client
	Gemini   gemini.Client
	SendGrid sendgrid.Client
	Twilio   twilio.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis fan-out is optional; a single instance broadcasts in-process.
	var sseBus bus.Bus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
	}

	// At least one AI provider must come up; the other stays a fallback.
	var openaiClient openai.Client
	if strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		c, err := openai.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		openaiClient = c
	} else {
		log.Warn("OPENAI_API_KEY not set; openai provider disabled")
	}

	var geminiClient gemini.Client
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) != "" {
		c, err := gemini.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init gemini client: %w", err)
		}
		geminiClient = c
	} else {
		log.Warn("GEMINI_API_KEY not set; gemini provider disabled")
	}

	mailer, err := sendgrid.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
	}

	smsSender, err := twilio.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init twilio client: %w", err)
	}

	return Clients{
		Bus:      sseBus,
		OpenAI:   openaiClient,
		Gemini:   geminiClient,
		SendGrid: mailer,
		Twilio:   smsSender,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
